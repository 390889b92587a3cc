package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"feedsync/internal/config"
	"feedsync/internal/database"
	"feedsync/internal/logger"
	"feedsync/internal/notifications"
	"feedsync/internal/syncer"
	"feedsync/internal/worker"
	"feedsync/internal/worker/processors"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Notifications are persisted next to the API
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	processor := processors.NewEventProcessor(
		syncer.NewFactory(cfg, logger),
		notifications.NewQueue(db.DB, cfg.NotificationDelay, logger),
		logger,
	)

	// Initialize worker
	w := worker.New(cfg, processor, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	// Start worker
	logger.Info("Starting worker...")
	go func() {
		w.Start(ctx)
		close(done)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	<-done
	w.Stop()
}
