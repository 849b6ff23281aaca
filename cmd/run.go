package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gambler/challenge-service/api"
	"gambler/challenge-service/config"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting challenge service...")

	// Load configuration
	cfg := config.Get()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	// Start background workers
	log.Println("Starting expiry worker...")
	stopExpiry := a.expiryWorker.Start(ctx)
	defer stopExpiry()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	services := api.Services{
		Challenges: a.challenges,
		Results:    a.results,
		Ratings:    a.ratings,
		Wallet:     a.wallet,
		Metrics:    a.metrics,
		Ping:       a.db.HealthCheck,
	}
	if a.notifications != nil {
		services.Notifications = a.notifications
	}
	router := api.NewRouter(api.NewHandler(services))

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for context cancellation
	log.Printf("Challenge service listening on %s in %s mode...", cfg.HTTPAddr, cfg.Environment)
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Cleanup resources
	log.Println("Shutting down challenge service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	log.Println("Shutdown completed")
	return nil
}

// ExpireNow runs a single expiry sweep and exits
func ExpireNow(ctx context.Context) error {
	cfg := config.Get()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	expired, err := a.expiryWorker.SweepOnce(ctx)
	if err != nil {
		return fmt.Errorf("expiry sweep failed: %w", err)
	}
	log.Printf("Expired %d stale negotiations", expired)
	return nil
}

// SetupLogging applies the configured level and picks JSON output in production
func SetupLogging(cfg *config.Config) {
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
