package worker

import (
	"context"
	"errors"
	"fmt"
	"rightfit/internal/grading"
	"rightfit/internal/notify"
	"rightfit/pkg/logger"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"
)

// ErrInlineClosed is returned by Dispatch after Close.
var ErrInlineClosed = errors.New("inline dispatcher is closed")

// Inline runs email and grade jobs in goroutines without River. It is the
// job runner of the jsonfile storage backend. Jobs get the same retry, snooze
// and cancel semantics as under River, and keyed jobs are deduplicated the way
// their unique options describe, for the lifetime of the process.
type Inline struct {
	email *EmailWorker
	grade *GradeWorker
	// backoff returns the delay before the given retry attempt.
	backoff func(attempt int) time.Duration

	ctx    context.Context //nolint: containedctx
	cancel context.CancelFunc
	wg     sync.WaitGroup
	nextID atomic.Int64

	mu     sync.Mutex
	closed bool
	// unique holds keys of running (and, for emails, finished) keyed jobs.
	unique map[string]struct{}
}

// InlineOption customizes an Inline dispatcher.
type InlineOption func(*Inline)

// WithBackoff overrides the retry delay.
func WithBackoff(backoff func(attempt int) time.Duration) InlineOption {
	return func(in *Inline) { in.backoff = backoff }
}

// NewInline creates a dispatcher running jobs with the given workers. ctx
// carries the logger; canceling it stops pending retries.
func NewInline(ctx context.Context, email *EmailWorker, grade *GradeWorker, opts ...InlineOption) *Inline {
	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	in := &Inline{
		email:   email,
		grade:   grade,
		backoff: defaultBackoff,
		ctx:     ctx,
		cancel:  cancel,
		unique:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(in)
	}

	return in
}

func defaultBackoff(attempt int) time.Duration {
	d := time.Duration(attempt*attempt) * time.Second
	if d > 5*time.Minute {
		d = 5 * time.Minute
	}

	return d
}

// IsDuplicate reports whether args would be skipped by Dispatch because a
// job with the same unique key is running or, for keyed emails, already ran.
func (in *Inline) IsDuplicate(args river.JobArgs) bool {
	key, _ := uniqueKey(args)
	if key == "" {
		return false
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	_, ok := in.unique[key]

	return ok
}

// Dispatch starts args in the background.
func (in *Inline) Dispatch(ctx context.Context, args river.JobArgs) error {
	key, permanent := uniqueKey(args)

	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()

		return ErrInlineClosed
	}
	if key != "" {
		if _, ok := in.unique[key]; ok {
			in.mu.Unlock()
			logger.Debug(ctx, "skipping duplicate job", zap.String("kind", args.Kind()), zap.String("key", key))

			return nil
		}
		in.unique[key] = struct{}{}
	}
	in.wg.Add(1)
	in.mu.Unlock()

	release := func() {
		if key != "" && !permanent {
			in.mu.Lock()
			delete(in.unique, key)
			in.mu.Unlock()
		}
		in.wg.Done()
	}

	// the dispatcher outlives the request that queued the job
	jobCtx := logger.WithLogger(in.ctx, logger.Get(ctx))
	switch a := args.(type) {
	case notify.JobArgs:
		go func() {
			defer release()
			runInline(jobCtx, in, in.email, a)
		}()
	case grading.JobArgs:
		go func() {
			defer release()
			runInline(jobCtx, in, in.grade, a)
		}()
	default:
		release()

		return fmt.Errorf("no inline worker for job kind %q", args.Kind())
	}

	return nil
}

// uniqueKey mirrors the unique options of the job kinds: keyed emails are
// unique in every state, grade jobs only while they run.
func uniqueKey(args river.JobArgs) (string, bool) {
	switch a := args.(type) {
	case notify.JobArgs:
		if a.Key != "" {
			return a.Kind() + ":" + a.Key, true
		}
	case grading.JobArgs:
		return a.Kind() + ":" + a.SubmissionID.String(), false
	}

	return "", false
}

// inlineArgs is satisfied by the job kinds the inline runner dispatches.
type inlineArgs interface {
	river.JobArgs
	river.JobArgsWithInsertOpts
}

type inlineWorker[T inlineArgs] interface {
	Work(ctx context.Context, job *river.Job[T]) error
}

func runInline[T inlineArgs](ctx context.Context, in *Inline, w inlineWorker[T], args T) {
	maxAttempts := args.InsertOpts().MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = river.MaxAttemptsDefault
	}
	job := &river.Job[T]{
		JobRow: &rivertype.JobRow{
			ID:          in.nextID.Add(1),
			Kind:        args.Kind(),
			MaxAttempts: maxAttempts,
			CreatedAt:   time.Now().UTC(),
		},
		Args: args,
	}
	ctx = logger.WithFields(ctx, zap.String("kind", args.Kind()), zap.Int64("inlineJobID", job.ID))

	for job.Attempt < maxAttempts {
		job.Attempt++
		err := w.Work(ctx, job)
		if err == nil {
			return
		}

		var cancelErr *river.JobCancelError
		if errors.As(err, &cancelErr) {
			logger.Warn(ctx, "inline job canceled", zap.Error(err))

			return
		}

		delay := in.backoff(job.Attempt)
		var snoozeErr *river.JobSnoozeError
		if errors.As(err, &snoozeErr) {
			// snoozes do not consume an attempt
			job.Attempt--
			delay = snoozeErr.Duration
		} else if job.Attempt >= maxAttempts {
			logger.Error(ctx, "inline job discarded", zap.Int("attempts", job.Attempt), zap.Error(err))

			return
		}

		logger.Debug(ctx, "retrying inline job", zap.Duration("delay", delay), zap.Int("attempt", job.Attempt))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Warn(ctx, "inline job abandoned on shutdown", zap.Error(err))

			return
		case <-timer.C:
		}
	}
}

// Wait blocks until every dispatched job has finished or ctx is done.
func (in *Inline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		in.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for inline jobs: %w", ctx.Err())
	}
}

// Close stops accepting jobs, cancels pending retries and waits for running
// jobs up to ctx.
func (in *Inline) Close(ctx context.Context) error {
	in.mu.Lock()
	in.closed = true
	in.mu.Unlock()
	in.cancel()

	return in.Wait(ctx)
}
