package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"orgchat/internal/pkg/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerInjectsScopedLogger(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger())

	var got *slog.Logger
	app.Get("/", func(c *fiber.Ctx) error {
		got = logging.FromContext(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// FromContext must return the injected request-scoped logger, not fall
	// back to the process default.
	require.NotNil(t, got)
	assert.NotSame(t, slog.Default(), got)
}
