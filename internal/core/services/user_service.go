package services

import (
	"context"
	"errors"

	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/adapters/persistence/repositories"
	"orgchat/internal/core/domain"

	"gorm.io/gorm"
)

// UserService handles user profile logic
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetProfile gets a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// ListUsers lists users with pagination. Admin only; enforced at the route.
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) ([]*models.UserResponse, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	users, total, err := s.userRepo.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, user := range users {
		responses[i] = user.ToResponse()
	}
	return responses, total, nil
}
