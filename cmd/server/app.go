package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/smashenglish/review-api/internal/config"
	"github.com/smashenglish/review-api/internal/domain/fsrs"
	"github.com/smashenglish/review-api/internal/generation"
	"github.com/smashenglish/review-api/internal/platform/gemini"
	"github.com/smashenglish/review-api/internal/platform/postgres"
	"github.com/smashenglish/review-api/internal/service/auth"
	"github.com/smashenglish/review-api/internal/service/review"
	"github.com/smashenglish/review-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore  store.UserStore
	wordStore  store.WordStore
	queueStore store.QueueStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier
	scheduler        fsrs.Service
	storyGenerator   generation.StoryGenerator
	reviewService    review.ReviewService
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordHasher = auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.passwordVerifier = auth.NewBcryptVerifier()

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.wordStore = postgres.NewPostgresWordStore(db, logger)
	app.queueStore = postgres.NewPostgresQueueStore(db, logger)

	// Story generation is optional: without an API key, daily queues are
	// served without a story.
	if cfg.LLM.GeminiAPIKey != "" {
		app.storyGenerator, err = gemini.NewStoryGenerator(
			ctx,
			logger.With("component", "story_generator"),
			cfg.LLM,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize story generator: %w", err)
		}
		logger.Info("Story generator initialized successfully")
	}

	// Initialize the scheduling model
	app.scheduler = fsrs.NewServiceWithParams(fsrs.NewParams(fsrs.ParamsConfig{
		RequestRetention: cfg.Scheduler.RequestRetention,
		MaxIntervalDays:  cfg.Scheduler.MaxIntervalDays,
	}))

	// Initialize the review service
	app.reviewService = review.NewReviewService(
		db,
		app.wordStore,
		app.queueStore,
		app.scheduler,
		app.storyGenerator,
		cfg.Scheduler.DailyWordLimit,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
