package cmd

import (
	"context"
	"fmt"
	"time"

	"seedbot/config"
	"seedbot/database"
	"seedbot/rcon"
	"seedbot/repository"
	"seedbot/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes the accrual daemon and blocks until ctx is cancelled
func Run(ctx context.Context) error {
	log.Info("Starting seedbot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize the control-API fleet
	fleet := newFleet(cfg)
	log.WithField("endpoints", cfg.RCONURLs).Info("Control-API fleet initialized")

	// Initialize unit of work factory and the accrual worker
	uowFactory := repository.NewUnitOfWorkFactory(db)
	seedingService := service.NewSeedingService(uowFactory, fleet, cfg)

	if err := seedingService.Start(ctx); err != nil {
		return fmt.Errorf("failed to start seeding service: %w", err)
	}

	// Wait for context cancellation
	log.Infof("Seedbot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down seedbot...")

	// Let an in-flight tick finish before the pool goes away
	if err := seedingService.Stop(); err != nil {
		log.Errorf("Error stopping seeding service: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}

func newFleet(cfg *config.Config) *rcon.Fleet {
	endpoints := make([]rcon.Endpoint, 0, len(cfg.RCONURLs))
	for _, url := range cfg.RCONURLs {
		endpoints = append(endpoints, rcon.NewClient(url, cfg.RCONAPIKey))
	}
	return rcon.NewFleet(endpoints...)
}
