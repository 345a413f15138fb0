package config

import (
	"log"

	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedDemoUsers(); err != nil {
		log.Printf("⚠️ Demo user seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedDemoUsers seeds one principal per role for development and testing.
// In production, create accounts through the registration endpoint.
func (s *Seeder) seedDemoUsers() error {
	var count int64
	s.db.Model(&models.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	engineering := "Engineering"
	seeds := []struct {
		username   string
		email      string
		fullName   string
		role       string
		department *string
		plaintext  string
	}{
		{"admin", "admin@orgchat.local", "System Administrator", "admin", nil, "Admin#2024!"},
		{"mgr.eng", "manager.eng@orgchat.local", "Engineering Manager", "manager", &engineering, "Manager#2024!"},
		{"emp.eng", "employee.eng@orgchat.local", "Engineering Employee", "employee", &engineering, "Employee#2024!"},
	}

	for _, seed := range seeds {
		hashed, err := password.Hash(seed.plaintext)
		if err != nil {
			return err
		}

		user := &models.User{
			ID:           uuid.New().String(),
			Username:     seed.username,
			Email:        seed.email,
			FullName:     seed.fullName,
			PasswordHash: hashed,
			Role:         seed.role,
			Department:   seed.department,
			IsActive:     true,
		}
		if err := s.db.Create(user).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded user: %s (%s)", user.Username, user.Role)
	}

	return nil
}
