package middleware

import (
	"errors"
	"strings"

	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/core/domain"
	"orgchat/internal/core/services"
	"orgchat/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware creates authentication middleware. It validates the
// bearer token and then re-resolves the principal from the store, so role
// and department always come from the database row, never from the client
// or even the token alone. Inactive accounts fail even with a valid token.
func AuthMiddleware(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		// 1. Authorization header first
		authHeader := c.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}

		// 2. Fall back to cookie
		if accessToken == "" {
			accessToken = c.Cookies("access_token")
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := authService.ValidateAccessToken(accessToken)
		if err != nil {
			if errors.Is(err, domain.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		user, err := authService.GetUserByID(c.UserContext(), claims.UserID)
		if err != nil {
			return response.Unauthorized(c, "User inactive or not found")
		}
		if !user.IsActive {
			return response.Unauthorized(c, "User inactive or not found")
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		c.Locals("role", user.Role)

		return c.Next()
	}
}

// CurrentUser returns the principal set by AuthMiddleware.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals("user").(*models.User)
	return user, ok
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// AdminOnly middleware allows only the admin role
func AdminOnly() fiber.Handler {
	return RoleMiddleware(string(domain.RoleAdmin))
}

// ManagerOrAdmin middleware allows manager or admin roles
func ManagerOrAdmin() fiber.Handler {
	return RoleMiddleware(string(domain.RoleManager), string(domain.RoleAdmin))
}
