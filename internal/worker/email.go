package worker

import (
	"context"
	"errors"
	"fmt"
	"rightfit/internal/notify"
	"rightfit/pkg/logger"
	"rightfit/pkg/mailer"
	"rightfit/pkg/metrics"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// EmailWorker renders notify templates and sends them through a mailer.
// Rendering failures and invalid messages cancel the job since a retry cannot
// fix them. Provider failures are returned so River retries with backoff.
type EmailWorker struct {
	river.WorkerDefaults[notify.JobArgs]

	renderer *notify.Renderer
	mailer   mailer.Mailer
	metrics  *metrics.Business
}

// NewEmailWorker constructs an EmailWorker.
func NewEmailWorker(renderer *notify.Renderer, m mailer.Mailer, bm *metrics.Business) *EmailWorker {
	if bm == nil {
		bm = metrics.Noop()
	}

	return &EmailWorker{renderer: renderer, mailer: m, metrics: bm}
}

func (e *EmailWorker) Work(ctx context.Context, job *river.Job[notify.JobArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.String("template", string(job.Args.Template)),
		zap.String("orderID", job.Args.Data.OrderID))

	msg, err := e.renderer.Render(job.Args)
	if err == nil {
		err = msg.Validate()
	}
	if err != nil {
		logger.Error(ctx, "canceling email job", zap.Error(err))
		e.metrics.EmailSent(ctx, string(job.Args.Template), false)

		return river.JobCancel(err) //nolint: wrapcheck
	}

	id, err := e.mailer.Send(ctx, msg)
	if err != nil {
		e.metrics.EmailSent(ctx, string(job.Args.Template), false)
		if errors.Is(err, mailer.ErrInvalidMessage) {
			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error sending email", zap.Error(err))

		return fmt.Errorf("could not send email: %w", err)
	}

	e.metrics.EmailSent(ctx, string(job.Args.Template), true)
	logger.Info(ctx, "email sent", zap.String("messageID", id))

	return nil
}
