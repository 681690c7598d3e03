// Package main implements the entry point for the review API server,
// which schedules users' vocabulary reviews with a spaced repetition
// model and serves daily review queues.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // Register the pgx database/sql driver

	"github.com/smashenglish/review-api/internal/config"
	"github.com/smashenglish/review-api/internal/platform/logger"
	"github.com/smashenglish/review-api/internal/platform/postgres"
)

// main initializes configuration, logging, the database connection, and
// the dependency graph, then starts the HTTP server.
func main() {
	ctx := context.Background()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := postgres.RunMigrations(ctx, db, appLogger); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// initializeApp loads configuration and sets up application logging.
// Returns the loaded config, the root logger, and any initialization error.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if cfg.Database.URL != "" {
		slog.Debug("Database configuration", "url_present", true)
	}
	if cfg.LLM.GeminiAPIKey == "" {
		slog.Info("No Gemini API key configured, daily queues will have no stories")
	}

	return cfg, appLogger, nil
}
