package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"

	"deskmate-backend/config"
	"deskmate-backend/internal/api"
	"deskmate-backend/internal/availability"
	"deskmate-backend/internal/booking"
	"deskmate-backend/internal/db"
	"deskmate-backend/internal/notification"
	"deskmate-backend/internal/registry"
	"deskmate-backend/internal/store"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "deskmate-backend ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire the engine: registry and store underneath, evaluator on the
	// read path, booking manager on the write path.
	resourceRegistry := registry.NewGormRegistry(gormDB)
	if cfg.Catalog.Seed {
		if err := resourceRegistry.Seed(ctx); err != nil {
			logger.Fatalf("failed to seed resource catalog: %v", err)
		}
	}

	reservationStore := store.NewGormStore(gormDB)
	evaluator := availability.NewEvaluator(reservationStore)

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	workerPool.Start(ctx)

	manager := booking.NewManager(resourceRegistry, reservationStore, evaluator, workerPool, nil)
	logger.Println("reservation engine initialized")

	// Initialize router
	router := api.NewRouter(&cfg.Server, resourceRegistry, reservationStore, evaluator, manager, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
