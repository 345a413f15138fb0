package handlers

import (
	"errors"
	"strings"
	"time"

	"orgchat/internal/adapters/http/middleware"
	"orgchat/internal/config"
	"orgchat/internal/core/domain"
	"orgchat/internal/core/services"
	"orgchat/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// RegisterRequest represents registration request body
type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest represents refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles user registration
// @Summary Register new user
// @Description Register a new principal with password policy enforcement
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body RegisterRequest true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}
	if req.FullName == "" {
		return response.BadRequest(c, "Full name is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	input := &services.RegisterInput{
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.TrimSpace(req.Email),
		FullName:   strings.TrimSpace(req.FullName),
		Password:   req.Password,
		Department: strings.TrimSpace(req.Department),
		Role:       strings.TrimSpace(req.Role),
	}

	user, err := h.authService.Register(c.UserContext(), input)
	if err != nil {
		var violations *domain.PolicyViolations
		switch {
		case errors.As(err, &violations):
			return response.BadRequestDetails(c, "Password does not meet the security policy", violations.Violations)
		case errors.Is(err, domain.ErrUserAlreadyExists):
			return response.BadRequest(c, "Username already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid role")
		default:
			return response.InternalServerError(c, "Failed to register user")
		}
	}

	return response.Created(c, "User created successfully", fiber.Map{
		"user_id": user.ID,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user and return tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Username == "" {
		return response.BadRequest(c, "Username is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	input := &services.LoginInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
	}

	result, err := h.authService.Login(c.UserContext(), input)
	if err != nil {
		switch {
		// NotFound, bad password, lockout and inactive all get the same
		// message, so the response never reveals which one happened.
		case errors.Is(err, domain.ErrInvalidCredentials),
			errors.Is(err, domain.ErrAccountLocked),
			errors.Is(err, domain.ErrUserInactive):
			return response.Unauthorized(c, "Invalid username or password")
		default:
			return response.InternalServerError(c, "Failed to login")
		}
	}

	h.setAuthCookies(c, result.AccessToken, result.RefreshToken)

	return response.Success(c, "Login successful", fiber.Map{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"token_type":    "bearer",
		"user":          result.User,
	})
}

// Refresh handles access token renewal
// @Summary Refresh access token
// @Description Exchange a refresh token for a new access token
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	_ = c.BodyParser(&req)

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		refreshToken = c.Cookies("refresh_token")
	}
	if refreshToken == "" {
		return response.Unauthorized(c, "Refresh token not found")
	}

	accessToken, err := h.authService.Refresh(c.UserContext(), refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrTokenExpired):
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Refresh token expired, please login again")
		case errors.Is(err, domain.ErrUserInactive):
			h.clearAuthCookies(c)
			return response.Forbidden(c, "User account is inactive")
		default:
			h.clearAuthCookies(c)
			return response.Unauthorized(c, "Invalid refresh token")
		}
	}

	h.setAccessCookie(c, accessToken)

	return response.Success(c, "Token refreshed successfully", fiber.Map{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}

// Logout clears the auth cookies. Tokens themselves stay valid until
// natural expiry; there is no server-side revocation list.
// @Summary Logout user
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.clearAuthCookies(c)
	return response.Success(c, "Logged out successfully", nil)
}

// Me returns the current user info
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	return response.Success(c, "User retrieved successfully", fiber.Map{
		"user": user.ToResponse(),
	})
}

// setAuthCookies sets access and refresh token cookies
func (h *AuthHandler) setAuthCookies(c *fiber.Ctx, accessToken, refreshToken string) {
	h.setAccessCookie(c, accessToken)

	c.Cookie(&fiber.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.RefreshTokenDays * 24 * 60 * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

func (h *AuthHandler) setAccessCookie(c *fiber.Ctx, accessToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}

// clearAuthCookies clears auth cookies
func (h *AuthHandler) clearAuthCookies(c *fiber.Ctx) {
	for _, name := range []string{"access_token", "refresh_token"} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			Expires:  time.Now().Add(-1 * time.Hour),
			Secure:   h.cfg.Cookie.Secure,
			HTTPOnly: true,
			SameSite: h.cfg.Cookie.SameSite,
			Domain:   h.cfg.Cookie.Domain,
		})
	}
}
