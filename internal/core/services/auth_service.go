package services

import (
	"context"
	"errors"
	"time"

	"orgchat/internal/adapters/events"
	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/adapters/persistence/repositories"
	"orgchat/internal/config"
	"orgchat/internal/core/domain"
	"orgchat/internal/pkg/jwt"
	"orgchat/internal/pkg/logging"
	"orgchat/internal/pkg/password"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService handles authentication business logic
type AuthService struct {
	userRepo repositories.UserRepository
	producer *events.Producer
	cfg      *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo repositories.UserRepository, producer *events.Producer, cfg *config.Config) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		producer: producer,
		cfg:      cfg,
	}
}

// RegisterInput represents registration input
type RegisterInput struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"access_token"`
	RefreshToken string               `json:"refresh_token"`
}

// Register registers a new principal. The password is checked against the
// strength policy before anything touches the store; all violated rules
// are returned together.
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", input.Username)

	role := input.Role
	if role == "" {
		role = string(domain.RoleEmployee)
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidInput
	}

	if err := password.Validate(input.Password); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrUserAlreadyExists
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     input.Username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hashed,
		Role:         role,
		IsActive:     true,
	}
	if input.Department != "" {
		user.Department = &input.Department
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	l.Info("user registered", "user_id", user.ID, "role", user.Role)
	s.publish(ctx, user.ID, events.TypeUserRegistered, map[string]interface{}{
		"username": user.Username,
		"role":     user.Role,
	})

	return user, nil
}

// Login authenticates a principal. NotFound, bad password and lockout all
// come back as distinct domain errors; the handler collapses them into one
// 401 message. A locked account fails before the password is ever checked,
// so the response carries no hint of whether it would have matched.
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", input.Username)

	user, err := s.userRepo.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	if user.IsLocked(now) {
		l.Warn("login rejected", "reason", "account locked")
		return nil, domain.ErrAccountLocked
	}

	// An expired lock means the window is over: the counter starts fresh,
	// whether or not the maintenance job already tidied the row.
	if user.LockedUntil != nil {
		user.FailedLoginAttempts = 0
		user.LockedUntil = nil
	}

	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if !password.Verify(input.Password, user.PasswordHash) {
		if err := s.recordFailedAttempt(ctx, user, now); err != nil {
			l.Error("failed to record login attempt", "error", err)
		}
		return nil, domain.ErrInvalidCredentials
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	l.Info("user logged in", "user_id", user.ID)
	s.publish(ctx, user.ID, events.TypeUserLoggedIn, map[string]interface{}{
		"username": user.Username,
	})

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// recordFailedAttempt increments the failure counter and locks the account
// once the threshold is reached.
func (s *AuthService) recordFailedAttempt(ctx context.Context, user *models.User, now time.Time) error {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= s.cfg.Lockout.MaxFailedAttempts {
		lockedUntil := now.Add(s.cfg.Lockout.Window)
		user.LockedUntil = &lockedUntil

		logging.FromContext(ctx).Warn("account locked",
			"username", user.Username,
			"attempts", user.FailedLoginAttempts,
			"locked_until", lockedUntil,
		)
		s.publish(ctx, user.ID, events.TypeAccountLocked, map[string]interface{}{
			"username":     user.Username,
			"locked_until": lockedUntil,
		})
	} else {
		s.publish(ctx, user.ID, events.TypeLoginFailed, map[string]interface{}{
			"username": user.Username,
			"attempts": user.FailedLoginAttempts,
		})
	}
	return s.userRepo.Update(ctx, user)
}

// Refresh verifies a refresh token and issues a new access token carrying
// the same identity claims. Tokens are stateless: once issued they remain
// valid until natural expiry, there is no revocation list.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWT.RefreshSecret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrWrongTokenType):
			return "", domain.ErrWrongTokenType
		default:
			return "", domain.ErrTokenInvalid
		}
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return "", domain.ErrTokenInvalid
	}
	if !user.IsActive {
		return "", domain.ErrUserInactive
	}

	return jwt.GenerateAccessToken(user.ID, user.Username, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.AccessTTL())
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	claims, err := jwt.ValidateAccessToken(accessToken, s.cfg.JWT.Secret)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrWrongTokenType):
			return nil, domain.ErrWrongTokenType
		default:
			return nil, domain.ErrTokenInvalid
		}
	}
	return claims, nil
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// generateTokens generates access and refresh tokens
func (s *AuthService) generateTokens(user *models.User) (*domain.TokenPair, error) {
	accessToken, err := jwt.GenerateAccessToken(
		user.ID,
		user.Username,
		user.Role,
		s.cfg.JWT.Secret,
		s.cfg.JWT.AccessTTL(),
	)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(
		user.ID,
		user.Username,
		user.Role,
		uuid.New().String(),
		s.cfg.JWT.RefreshSecret,
		s.cfg.JWT.RefreshTTL(),
	)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// publish sends an audit event, best-effort with its own timeout.
func (s *AuthService) publish(ctx context.Context, key, eventType string, payload map[string]interface{}) {
	if s.producer == nil {
		return
	}

	event := map[string]interface{}{"type": eventType, "at": time.Now().UTC()}
	for k, v := range payload {
		event[k] = v
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := s.producer.Publish(pubCtx, key, event); err != nil {
		logging.FromContext(ctx).Error("audit publish failed", "type", eventType, "error", err)
	}
}
