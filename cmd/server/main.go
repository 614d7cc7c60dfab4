package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "congregation-api/docs" // Swagger docs
	"congregation-api/internal/adapters/http/middleware"
	"congregation-api/internal/adapters/http/routes"
	"congregation-api/internal/adapters/lock"
	"congregation-api/internal/adapters/notify"
	"congregation-api/internal/config"
	"congregation-api/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// @title Congregation API
// @version 1.0
// @description Members, forum, prayer requests and donations for a congregation
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@congregation.local

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /api/v1
// @schemes https http

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

	// Connect to database
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer config.CloseDatabase()

	// Auto migrate (creates tables if not exist)
	if err := config.Migrate(db); err != nil {
		log.Fatalf("❌ %v", err)
	}

	// Seed the bootstrap administrator
	if err := config.NewSeeder(db, cfg.Seed).Run(); err != nil {
		log.Printf("⚠️ Warning: Failed to seed data: %v", err)
	}

	// Redis is optional; without it receipt locks are per process
	redisClient, err := config.ConnectRedis(context.Background(), cfg.Redis)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	var locker services.Locker
	if redisClient != nil {
		defer redisClient.Close()
		locker = lock.NewRedisLocker(redisClient)
	} else {
		log.Println("⚠️ REDIS_ADDR not set, using in-process receipt locks")
		locker = lock.NewLocalLocker()
	}

	deps := routes.Dependencies{
		DB:       db,
		Config:   cfg,
		Redis:    redisClient,
		Notifier: notify.NewSMTPNotifier(cfg.SMTP),
		Locker:   locker,
	}
	container := routes.NewContainer(deps)

	// Start scheduled jobs (receipt retry, token and phone code cleanup)
	if err := container.Cron.Start(); err != nil {
		log.Fatalf("❌ Failed to start cron service: %v", err)
	}
	defer container.Cron.Stop()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Congregation API v1.0",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	// Setup middlewares
	middleware.Setup(app, cfg)

	// Setup routes
	routes.Setup(app, container, deps)

	// Graceful shutdown
	go gracefulShutdown(app)

	// Start server
	log.Printf("🚀 Server starting on port %s [MODE: %s]", cfg.Port, cfg.AppMode)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}

	container.Auth.WaitForWelcomes()
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
