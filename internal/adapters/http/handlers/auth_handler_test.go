package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/adapters/persistence/repositories"
	"orgchat/internal/config"
	"orgchat/internal/core/services"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthTestApp(t *testing.T) (*fiber.App, *services.AuthService, repositories.UserRepository) {
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
		Cookie: config.CookieConfig{SameSite: "lax"},
	}

	userRepo := repositories.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, nil, cfg)
	handler := NewAuthHandler(authService, cfg)

	app := fiber.New()
	app.Post("/auth/login", handler.Login)

	return app, authService, userRepo
}

func registerHandlerTestUser(t *testing.T, svc *services.AuthService, username string) {
	t.Helper()
	_, err := svc.Register(context.Background(), &services.RegisterInput{
		Username:   username,
		Email:      username + "@example.com",
		FullName:   "Test " + username,
		Password:   "Str0ng&Secure",
		Department: "Engineering",
	})
	require.NoError(t, err)
}

func postLogin(t *testing.T, app *fiber.App, username, password string) (int, string) {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(raw)
}

func TestLoginSucceedsWithTokens(t *testing.T) {
	app, svc, _ := newAuthTestApp(t)
	registerHandlerTestUser(t, svc, "alice")

	status, body := postLogin(t, app, "alice", "Str0ng&Secure")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "access_token")
	assert.Contains(t, body, `"token_type":"bearer"`)
}

// Every login failure arm must be indistinguishable from the outside:
// unknown user, wrong password, locked account and inactive account all
// answer 401 with the same body.
func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app, svc, repo := newAuthTestApp(t)

	registerHandlerTestUser(t, svc, "wrongpw")

	registerHandlerTestUser(t, svc, "locked")
	lockedUser, err := repo.GetByUsername(context.Background(), "locked")
	require.NoError(t, err)
	until := time.Now().Add(10 * time.Minute)
	lockedUser.LockedUntil = &until
	lockedUser.FailedLoginAttempts = 3
	require.NoError(t, repo.Update(context.Background(), lockedUser))

	registerHandlerTestUser(t, svc, "inactive")
	inactiveUser, err := repo.GetByUsername(context.Background(), "inactive")
	require.NoError(t, err)
	inactiveUser.IsActive = false
	require.NoError(t, repo.Update(context.Background(), inactiveUser))

	attempts := []struct {
		name     string
		username string
		password string
	}{
		{"unknown user", "ghost", "Str0ng&Secure"},
		{"wrong password", "wrongpw", "Wrong-Passw0rd!"},
		{"locked account, correct password", "locked", "Str0ng&Secure"},
		{"inactive account, correct password", "inactive", "Str0ng&Secure"},
	}

	var bodies []string
	for _, attempt := range attempts {
		status, body := postLogin(t, app, attempt.username, attempt.password)
		assert.Equal(t, http.StatusUnauthorized, status, attempt.name)
		bodies = append(bodies, body)
	}
	for i := 1; i < len(bodies); i++ {
		assert.Equal(t, bodies[0], bodies[i])
	}
	assert.Contains(t, bodies[0], "Invalid username or password")
}
