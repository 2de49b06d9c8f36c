// Package worker runs the background jobs of the service: transactional
// emails and AI grading. Under Postgres the jobs run on River; with the
// jsonfile backend the Inline dispatcher runs the same workers in-process.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"rightfit/internal/config"
	"rightfit/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Options configure the River client.
type Options struct {
	// MaxWorkers is the concurrency of the default queue.
	MaxWorkers int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{MaxWorkers: cfg.Worker.MaxWorkers}
}

// Workers registers the email and grade workers with River.
func Workers(email *EmailWorker, grade *GradeWorker) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker(workers, email)
	river.AddWorker(workers, grade)

	return workers
}

// Start creates and starts a River client working the default queue.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	opts Options,
	email *EmailWorker,
	grade *GradeWorker) (*river.Client[pgx.Tx], error) {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 10
	}

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: opts.MaxWorkers},
		},
		Workers: Workers(email, grade),
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
