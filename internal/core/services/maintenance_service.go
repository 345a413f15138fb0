package services

import (
	"context"
	"log"
	"time"

	"orgchat/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// MaintenanceService runs scheduled housekeeping jobs. Currently one job:
// clearing lockout state of accounts whose lock window has elapsed, so the
// users table does not accumulate stale locks.
type MaintenanceService struct {
	userRepo repositories.UserRepository
	cron     *cron.Cron
}

// NewMaintenanceService creates the maintenance scheduler.
func NewMaintenanceService(userRepo repositories.UserRepository) *MaintenanceService {
	return &MaintenanceService{
		userRepo: userRepo,
		cron:     cron.New(),
	}
}

// Start registers and launches all jobs.
func (s *MaintenanceService) Start() {
	// Every 10 minutes; locks expire by timestamp either way, this only
	// tidies the rows.
	s.cron.AddFunc("*/10 * * * *", s.clearExpiredLockouts)

	s.cron.Start()
	log.Println("🚀 MaintenanceService started")
}

// Stop stops the scheduler, waiting for running jobs.
func (s *MaintenanceService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 MaintenanceService stopped")
}

func (s *MaintenanceService) clearExpiredLockouts() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cleared, err := s.userRepo.ClearExpiredLockouts(ctx, time.Now())
	if err != nil {
		log.Printf("⚠️ Failed to clear expired lockouts: %v", err)
		return
	}
	if cleared > 0 {
		log.Printf("✅ Cleared %d expired lockouts", cleared)
	}
}
