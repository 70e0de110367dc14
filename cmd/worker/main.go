// Package main implements the standalone summarization worker. It consumes
// jobs from the message broker and drives notes through their processing
// lifecycle. The API server publishes jobs; this process is the only
// broker consumer in a multi-process deployment.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kerrian/notely-api/internal/config"
	"github.com/kerrian/notely-api/internal/platform/logger"
	"github.com/kerrian/notely-api/internal/platform/postgres"
	"github.com/kerrian/notely-api/internal/queue"
	"github.com/kerrian/notely-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel})
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	if err := run(cfg, appLogger); err != nil {
		slog.Error("Worker terminated with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger *slog.Logger) error {
	if cfg.Queue.URL == "" {
		return errors.New("queue URL is required for the standalone worker")
	}

	db, err := setupDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobQueue, err := queue.NewAMQPQueue(ctx, cfg.Queue.URL, appLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to message broker: %w", err)
	}
	defer jobQueue.Close()

	noteStore := postgres.NewPostgresNoteStore(db, appLogger)

	w, err := worker.New(noteStore, worker.NewKeywordSummarizer(), appLogger)
	if err != nil {
		return fmt.Errorf("failed to create summarization worker: %w", err)
	}

	appLogger.Info("Summarization worker started", "queue", queue.SummarizationQueueName)

	if err := jobQueue.Consume(ctx, w.HandleJob); err != nil && ctx.Err() == nil {
		return fmt.Errorf("consumer stopped: %w", err)
	}

	appLogger.Info("Summarization worker shut down")
	return nil
}

func setupDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
