package routes

import (
	"orgchat/internal/adapters/events"
	"orgchat/internal/adapters/http/handlers"
	"orgchat/internal/adapters/http/middleware"
	"orgchat/internal/adapters/persistence/repositories"
	"orgchat/internal/config"
	"orgchat/internal/core/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Setup configures all routes for the application
func Setup(
	app *fiber.App,
	db *gorm.DB,
	cfg *config.Config,
	retriever services.Retriever,
	generator services.Generator,
	producer *events.Producer,
) {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)

	// Initialize services
	authService := services.NewAuthService(userRepo, producer, cfg)
	userService := services.NewUserService(userRepo)
	chatService := services.NewChatService(
		retriever,
		generator,
		producer,
		cfg.Search.TopK,
		cfg.Search.Timeout,
		cfg.LLM.Timeout,
	)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, cfg)
	chatHandler := handlers.NewChatHandler(chatService)
	userHandler := handlers.NewUserHandler(userService)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Health)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes (public, rate limited)
	authRoutes := app.Group("/auth")
	setupAuthRoutes(authRoutes, authHandler, authService)

	// Chat routes (authenticated users)
	apiRoutes := app.Group("/api")
	apiRoutes.Use(middleware.AuthMiddleware(authService))
	setupChatRoutes(apiRoutes, chatHandler)
	setupUserRoutes(apiRoutes, userHandler)
}

// setupAuthRoutes configures authentication routes
func setupAuthRoutes(router fiber.Router, handler *handlers.AuthHandler, authService *services.AuthService) {
	// Public routes
	router.Post("/register", middleware.AuthRateLimiter(), handler.Register)
	router.Post("/login", middleware.AuthRateLimiter(), handler.Login)
	router.Post("/refresh", handler.Refresh)
	router.Post("/logout", handler.Logout)

	// Protected routes
	router.Get("/me", middleware.AuthMiddleware(authService), handler.Me)
}

// setupChatRoutes configures chat routes
func setupChatRoutes(router fiber.Router, handler *handlers.ChatHandler) {
	router.Post("/chat", handler.Chat)
	router.Get("/chat/history", handler.History)
}

// setupUserRoutes configures user administration routes (admin only)
func setupUserRoutes(router fiber.Router, handler *handlers.UserHandler) {
	userRoutes := router.Group("/users")
	userRoutes.Use(middleware.AdminOnly())
	userRoutes.Get("/", handler.ListUsers)
	userRoutes.Get("/:id", handler.GetUser)
}
