package services

import (
	"context"
	"testing"
	"time"

	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/adapters/persistence/repositories"
	"orgchat/internal/config"
	"orgchat/internal/core/domain"
	"orgchat/internal/pkg/jwt"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAuthService(t *testing.T) (*AuthService, repositories.UserRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, models.AutoMigrate(db))

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:           "test-access-secret",
			RefreshSecret:    "test-refresh-secret",
			AccessTokenMins:  30,
			RefreshTokenDays: 7,
		},
		Lockout: config.LockoutConfig{
			MaxFailedAttempts: 3,
			Window:            15 * time.Minute,
		},
	}

	userRepo := repositories.NewUserRepository(db)
	return NewAuthService(userRepo, nil, cfg), userRepo
}

func registerTestUser(t *testing.T, svc *AuthService, username, role string) *models.User {
	t.Helper()
	user, err := svc.Register(context.Background(), &RegisterInput{
		Username:   username,
		Email:      username + "@example.com",
		FullName:   "Test " + username,
		Password:   "Str0ng&Secure",
		Department: "Engineering",
		Role:       role,
	})
	require.NoError(t, err)
	return user
}

func TestRegisterDefaultsToEmployeeRole(t *testing.T) {
	svc, _ := newTestAuthService(t)

	user := registerTestUser(t, svc, "alice", "")
	assert.Equal(t, string(domain.RoleEmployee), user.Role)
	assert.Equal(t, "Engineering", user.DepartmentName())
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, user.ID)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		FullName: "Bob",
		Password: "Str0ng&Secure",
		Role:     "HR",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Register(context.Background(), &RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		FullName: "Bob",
		Password: "short",
	})

	var violations *domain.PolicyViolations
	require.ErrorAs(t, err, &violations)
	assert.NotEmpty(t, violations.Violations)
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	svc, _ := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "")

	_, err := svc.Register(context.Background(), &RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		FullName: "Other",
		Password: "Str0ng&Secure",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestLoginSuccessIssuesTokens(t *testing.T) {
	svc, repo := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "manager")

	result, err := svc.Login(context.Background(), &LoginInput{
		Username: "alice",
		Password: "Str0ng&Secure",
	})
	require.NoError(t, err)

	assert.Equal(t, "Test alice", result.User.Name)
	assert.Equal(t, "alice", result.User.EmployeeID)
	assert.Equal(t, "manager", result.User.Role)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	claims, err := svc.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	stored, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLogin)
}

func TestLoginUnknownUserReportsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.Login(context.Background(), &LoginInput{
		Username: "ghost",
		Password: "Str0ng&Secure",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginWrongPasswordCountsAttempts(t *testing.T) {
	svc, repo := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "")

	_, err := svc.Login(context.Background(), &LoginInput{
		Username: "alice",
		Password: "Wrong-Passw0rd!",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	stored, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	svc, repo := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "")

	for i := 0; i < 3; i++ {
		_, err := svc.Login(context.Background(), &LoginInput{
			Username: "alice",
			Password: "Wrong-Passw0rd!",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	stored, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	require.NotNil(t, stored.LockedUntil)

	// Correct password no longer helps while the lock holds.
	_, err = svc.Login(context.Background(), &LoginInput{
		Username: "alice",
		Password: "Str0ng&Secure",
	})
	assert.ErrorIs(t, err, domain.ErrAccountLocked)
}

func TestLoginSucceedsAfterLockExpires(t *testing.T) {
	svc, repo := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "")

	stored, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	stored.FailedLoginAttempts = 3
	stored.LockedUntil = &expired
	require.NoError(t, repo.Update(context.Background(), stored))

	result, err := svc.Login(context.Background(), &LoginInput{
		Username: "alice",
		Password: "Str0ng&Secure",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)

	stored, err = repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLoginAfterExpiredLockStartsCounterFresh(t *testing.T) {
	svc, repo := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "")

	stored, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	stored.FailedLoginAttempts = 3
	stored.LockedUntil = &expired
	require.NoError(t, repo.Update(context.Background(), stored))

	// One wrong password after the window must not re-lock immediately.
	_, err = svc.Login(context.Background(), &LoginInput{
		Username: "alice",
		Password: "Wrong-Passw0rd!",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	stored, err = repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.FailedLoginAttempts)
	assert.Nil(t, stored.LockedUntil)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, repo := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "")

	stored, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	stored.IsActive = false
	require.NoError(t, repo.Update(context.Background(), stored))

	_, err = svc.Login(context.Background(), &LoginInput{
		Username: "alice",
		Password: "Str0ng&Secure",
	})
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestRefreshIssuesNewAccessToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "admin")

	result, err := svc.Login(context.Background(), &LoginInput{
		Username: "alice",
		Password: "Str0ng&Secure",
	})
	require.NoError(t, err)

	accessToken, err := svc.Refresh(context.Background(), result.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(accessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	svc, _ := newTestAuthService(t)
	registerTestUser(t, svc, "alice", "")

	result, err := svc.Login(context.Background(), &LoginInput{
		Username: "alice",
		Password: "Str0ng&Secure",
	})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), result.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestValidateAccessTokenMapsJWTErrors(t *testing.T) {
	svc, _ := newTestAuthService(t)

	_, err := svc.ValidateAccessToken("garbage")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)

	expired, err := jwt.GenerateAccessToken("u1", "alice", "employee", "test-access-secret", -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateAccessToken(expired)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}
