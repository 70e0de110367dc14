package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kerrian/notely-api/internal/config"
	"github.com/kerrian/notely-api/internal/platform/postgres"
	"github.com/kerrian/notely-api/internal/queue"
	"github.com/kerrian/notely-api/internal/service"
	"github.com/kerrian/notely-api/internal/service/auth"
	"github.com/kerrian/notely-api/internal/store"
	"github.com/kerrian/notely-api/internal/worker"
)

// jobConsumer is the part of a queue the in-process worker loop needs.
type jobConsumer interface {
	Consume(ctx context.Context, handler func(ctx context.Context, job queue.Job) error) error
	Close()
}

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore store.UserStore
	noteStore store.NoteStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	noteService      service.NoteService

	// Job queue and the in-process worker loop; consumeLocally is set when
	// no broker is configured and the worker runs inside this process.
	jobQueue       queue.JobQueue
	consumer       jobConsumer
	worker         *worker.Worker
	consumeLocally bool
	cancelConsumer context.CancelFunc
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
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

	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, logger)
	app.noteStore = postgres.NewPostgresNoteStore(db, logger)

	if err := app.setupQueue(ctx); err != nil {
		return nil, err
	}

	app.worker, err = worker.New(app.noteStore, worker.NewKeywordSummarizer(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarization worker: %w", err)
	}

	app.noteService, err = service.NewNoteService(app.noteStore, app.jobQueue, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create note service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// setupQueue initializes the job queue. With a broker URL configured the
// AMQP queue is used and a separate worker process consumes jobs; without
// one an in-process queue is consumed by this same binary.
func (app *application) setupQueue(ctx context.Context) error {
	if app.config.Queue.URL != "" {
		amqpQueue, err := queue.NewAMQPQueue(ctx, app.config.Queue.URL, app.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		app.jobQueue = amqpQueue
		app.consumer = amqpQueue
		app.logger.Info("AMQP job queue initialized")
		return nil
	}

	memQueue := queue.NewMemoryQueue(app.config.Queue.BufferSize, app.logger)
	app.jobQueue = memQueue
	app.consumer = memQueue
	app.consumeLocally = true
	app.logger.Info("In-process job queue initialized",
		"buffer_size", app.config.Queue.BufferSize)
	return nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	if app.consumeLocally {
		consumerCtx, cancel := context.WithCancel(ctx)
		app.cancelConsumer = cancel
		go func() {
			if err := app.consumer.Consume(consumerCtx, app.worker.HandleJob); err != nil &&
				consumerCtx.Err() == nil {
				app.logger.Error("In-process job consumer stopped", "error", err)
			}
		}()
		app.logger.Info("In-process summarization worker started")
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.cancelConsumer != nil {
		app.cancelConsumer()
	}

	if app.consumer != nil {
		app.consumer.Close()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
