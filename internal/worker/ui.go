package worker

import (
	"context"
	"fmt"
	"net/http"
	"rightfit/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"riverqueue.com/riverui"
)

// NewUI builds the River UI for client, served under prefix, and starts its
// background queries.
func NewUI(ctx context.Context, client *river.Client[pgx.Tx], prefix string) (http.Handler, error) {
	handler, err := riverui.NewHandler(&riverui.HandlerOpts{
		Endpoints: riverui.NewEndpoints(client, nil),
		Logger:    logger.Slog(ctx),
		Prefix:    prefix,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river ui: %w", err)
	}

	if err := handler.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river ui: %w", err)
	}

	return handler, nil
}
