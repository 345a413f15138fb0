package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orgchat/internal/adapters/events"
	"orgchat/internal/adapters/http/middleware"
	"orgchat/internal/adapters/http/routes"
	"orgchat/internal/adapters/llm"
	"orgchat/internal/adapters/persistence/models"
	"orgchat/internal/adapters/persistence/repositories"
	"orgchat/internal/adapters/search"
	"orgchat/internal/config"
	"orgchat/internal/core/services"
	"orgchat/internal/pkg/logging"

	"github.com/gofiber/fiber/v2"

	_ "orgchat/docs" // Swagger docs
)

// @title Offline AI Chatbot API
// @version 1.0
// @description Role-aware conversational query layer over employee records

// @host localhost:8000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase(db)

	// Auto migrate (creates tables if not exist)
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("❌ Failed to auto migrate: %v", err)
	}
	log.Println("✅ Database migration completed")

	// Seed demo users (dev mode, empty table only)
	if cfg.IsDev() {
		if err := config.NewSeeder(db).Run(); err != nil {
			log.Printf("⚠️ Warning: Failed to seed demo users: %v", err)
		}
	}

	// Search backend
	esClient, err := search.NewClient(cfg.Search)
	if err != nil {
		log.Fatalf("❌ Failed to connect to search backend: %v", err)
	}
	retriever := search.NewGateway(esClient, cfg.Search.Index)

	// LLM backend (local Ollama)
	llmClient := llm.NewClient(llm.Config{
		BaseURL:        cfg.LLM.BaseURL,
		GenerateModel:  cfg.LLM.GenerateModel,
		EmbeddingModel: cfg.LLM.EmbeddingModel,
		Timeout:        cfg.LLM.Timeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := llmClient.CheckRunning(ctx); err != nil {
		log.Printf("⚠️ Warning: LLM backend not reachable: %v", err)
	}
	cancel()
	generator := llm.NewGenerator(llmClient)

	// Audit event producer (optional, disabled when KAFKA_ADDRESS is empty)
	producer := events.NewProducer(cfg.Kafka.Address, cfg.Kafka.Topic)
	defer producer.Close()

	// Start lockout maintenance job
	userRepo := repositories.NewUserRepository(db)
	maintenance := services.NewMaintenanceService(userRepo)
	maintenance.Start()
	defer maintenance.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Offline AI Chatbot API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes (pass adapters and cfg for dependency injection)
	routes.Setup(app, db, cfg, retriever, generator, producer)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// gracefulShutdown handles graceful shutdown
func gracefulShutdown(app *fiber.App) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("❌ Error during shutdown: %v", err)
	}
	log.Println("✅ Server stopped gracefully")
}
