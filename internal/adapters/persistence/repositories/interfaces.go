package repositories

import (
	"context"
	"time"

	"orgchat/internal/adapters/persistence/models"
)

// UserRepository defines user data access. Concurrent writes to the same
// row are serialized by the database's transaction discipline; callers do
// no additional locking.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ClearExpiredLockouts(ctx context.Context, now time.Time) (int64, error)
}
