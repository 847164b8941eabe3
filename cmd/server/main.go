package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/joho/godotenv"
	"github.com/therapytreasure/backend/internal/config"
	"github.com/therapytreasure/backend/internal/database"
	"github.com/therapytreasure/backend/internal/handlers"
	"github.com/therapytreasure/backend/internal/routes"
	"github.com/therapytreasure/backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: 0.1,
		})
		if err != nil {
			log.Printf("Sentry initialization failed: %v", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer database.Disconnect()

	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer database.DisconnectPostgres()

	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer database.DisconnectRedis()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := services.EnsureIndexes(startupCtx); err != nil {
		cancel()
		log.Fatalf("Failed to create indexes: %v", err)
	}
	if err := services.EnsureAdminUser(startupCtx, cfg); err != nil {
		cancel()
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	cancel()

	handlers.Init(cfg)
	if err := handlers.InitCloudinaryService(cfg); err != nil {
		log.Printf("Cloudinary initialization failed, file uploads disabled: %v", err)
	}

	var handler http.Handler = routes.SetupRoutes(cfg)
	if cfg.SentryDSN != "" {
		handler = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(handler)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
