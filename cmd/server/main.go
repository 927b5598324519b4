package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BasantaParajuli22/auth-mail-service/internal/config"
	"github.com/BasantaParajuli22/auth-mail-service/internal/database"
	"github.com/BasantaParajuli22/auth-mail-service/internal/db"
	"github.com/BasantaParajuli22/auth-mail-service/internal/email"
	"github.com/BasantaParajuli22/auth-mail-service/internal/routes"
	"github.com/BasantaParajuli22/auth-mail-service/internal/services"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

func main() {
	// Initialize debug package first with default settings
	debug.Reinitialize()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		debug.Warning("No .env file found, relying on environment variables")

		requiredVars := []string{
			"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
			"JWT_SECRET",
		}

		missingVars := []string{}
		for _, v := range requiredVars {
			if os.Getenv(v) == "" {
				missingVars = append(missingVars, v)
			}
		}

		if len(missingVars) > 0 {
			debug.Error("Missing required environment variables: %v", missingVars)
			os.Exit(1)
		}
	} else {
		debug.Info("Successfully loaded .env file")
	}

	// Reinitialize debug package with environment variables
	debug.Reinitialize()
	debug.Info("Debug logging initialized with environment settings")

	// Initialize application configuration
	appConfig := config.NewConfig()
	debug.Info("Application configuration initialized")

	// Initialize database connection
	debug.Info("Initializing database connection")
	sqlDB, err := database.Connect()
	if err != nil {
		debug.Error("Failed to connect to database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	// Run migrations
	if err := database.RunMigrations(); err != nil {
		debug.Error("Database migrations failed: %v", err)
		os.Exit(1)
	}
	debug.Info("Database migrations completed successfully")

	appDB := db.NewDB(sqlDB)

	// Initialize email service from environment
	emailService, err := email.NewService(appConfig.BaseURL)
	if err != nil {
		debug.Error("Failed to initialize email service: %v", err)
		os.Exit(1)
	}

	// Start expired-secret cleanup
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	defer cancelCleanup()

	cleanupService := services.NewSecretCleanupService(appDB)
	if err := cleanupService.Start(cleanupCtx); err != nil {
		debug.Error("Failed to start secret cleanup service: %v", err)
		os.Exit(1)
	}
	defer cleanupService.Stop()

	// Setup routes
	debug.Info("Setting up routes")
	router := mux.NewRouter()
	routes.SetupRoutes(router, appDB, emailService, appConfig)

	server := &http.Server{
		Addr:    appConfig.GetAddress(),
		Handler: router,
	}

	// Channel to wait for server errors
	serverErr := make(chan error, 1)

	go func() {
		debug.Info("Starting HTTP server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			debug.Error("HTTP server error: %v", err)
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	debug.Info("Server is ready to handle requests")

	select {
	case err := <-serverErr:
		debug.Error("Server error: %v", err)
		os.Exit(1)
	case sig := <-sigChan:
		debug.Info("Received signal: %v", sig)
		debug.Info("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			debug.Error("Server shutdown error: %v", err)
			os.Exit(1)
		}
		debug.Info("Server stopped gracefully")
	}
}
