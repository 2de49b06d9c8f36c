package worker

import (
	"context"
	"errors"
	"fmt"
	"rightfit/internal/grading"
	"rightfit/pkg/grader"
	"rightfit/pkg/logger"
	"rightfit/pkg/serrors"
	"sync"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// GradeWorker is a River worker that grades submitted CVs through a
// grading.Service. It embeds River's WorkerDefaults and adds cooperative rate
// limiting so concurrent jobs never exceed the grading provider's request
// budget.
//
// # Rate limiting overview
//
// The worker tracks the last observed provider rate-limit status (lastRLStatus)
// and the number of requests in flight (inFlightRequests). Before grading,
// reserveRL reserves one unit of the budget:
//
//	remaining := lastRLStatus.Remaining
//	if now > lastRLStatus.ResetAt { remaining = lastRLStatus.Limit }
//
// A request may start when remaining - inFlightRequests > 0. Otherwise
// reserveRL waits until ResetAt passes or another request finishes and signals
// requestFinishedChan.
//
// requestFinished merges the status returned with each response. A new
// ResetAt is always adopted; within the same window Remaining only ever
// decreases, so concurrent responses cannot make the view optimistic.
//
// Bootstrap: before any response, a single pilot request is allowed
// (Limit=1, Remaining=1, far-future ResetAt) to learn the real headers. If the
// provider does not send rate-limit headers, the pilot is replaced by the
// configured default budget (defaultLimit per window) once it finishes.
//
// Error handling: conflicts (no CV text) and missing submissions cancel the
// job. Provider rate limiting snoozes the job until ResetAt. Other errors are
// logged and returned so River retries them.
type GradeWorker struct {
	river.WorkerDefaults[grading.JobArgs]

	grading grading.Service
	// defaultLimit and window describe the budget assumed when the provider
	// sends no rate-limit headers.
	defaultLimit int
	window       time.Duration
	// mu protects inFlightRequests, lastRLStatus and probing.
	mu               sync.Mutex
	inFlightRequests int
	lastRLStatus     *grader.RateLimitStatus
	// probing is true while lastRLStatus is the synthetic bootstrap status.
	probing bool
	// requestFinishedChan wakes one goroutine waiting in reserveRL.
	requestFinishedChan chan struct{}
}

// NewGradeWorker constructs a GradeWorker. defaultLimit requests per window
// are assumed when the provider reports no rate-limit status.
func NewGradeWorker(service grading.Service, defaultLimit int, window time.Duration) *GradeWorker {
	if defaultLimit <= 0 {
		defaultLimit = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	return &GradeWorker{
		grading:             service,
		defaultLimit:        defaultLimit,
		window:              window,
		requestFinishedChan: make(chan struct{}),
	}
}

// Work grades a single submission while respecting the provider rate limit
// and maps errors to River actions.
func (g *GradeWorker) Work(ctx context.Context, job *river.Job[grading.JobArgs]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.Stringer("submission", job.Args.SubmissionID))

	if err := g.reserveRL(ctx); err != nil {
		logger.Error(ctx, "error reserving rate limit", zap.Error(err))

		return fmt.Errorf("could not reserve rate limit: %w", err)
	}

	grade, rl, err := g.grading.GradeSubmission(ctx, job.Args.SubmissionID)
	g.requestFinished(ctx, rl)
	if err != nil {
		if errors.Is(err, serrors.ErrConflict) || errors.Is(err, serrors.ErrNotFound) {
			logger.Warn(ctx, "canceling grade job", zap.Error(err))

			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error grading submission", zap.Error(err))

		if errors.Is(err, serrors.ErrRateLimited) {
			dur := time.Until(rl.ResetAt)
			if rl.ResetAt.IsZero() {
				dur = g.window
			}
			if dur < 0 {
				dur = 0
			}

			return river.JobSnooze(dur) //nolint: wrapcheck
		}

		return fmt.Errorf("could not grade submission: %w", err)
	}

	logger.Info(ctx, "submission graded", zap.Int("overall", grade.Overall), zap.Bool("demo", grade.Demo))

	return nil
}

// requestFinished is called after every grading attempt. It releases the
// in-flight slot, wakes one waiter and merges the new rate-limit status.
func (g *GradeWorker) requestFinished(ctx context.Context, newRLStatus grader.RateLimitStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlightRequests > 0 {
		g.inFlightRequests--
	}

	select {
	case g.requestFinishedChan <- struct{}{}:
	default:
	}

	if newRLStatus.ResetAt.IsZero() {
		if g.probing {
			// no headers from the provider, fall back to the configured budget
			g.lastRLStatus = &grader.RateLimitStatus{
				Limit:     g.defaultLimit,
				Remaining: g.defaultLimit - 1,
				ResetAt:   time.Now().Add(g.window),
			}
			g.probing = false
		}

		return
	}

	log := func() {
		logger.Debug(ctx, "received rate limit status",
			zap.Int("limit", newRLStatus.Limit),
			zap.Int("remaining", newRLStatus.Remaining),
			zap.Time("resetAt", newRLStatus.ResetAt),
			zap.Int("inFlight", g.inFlightRequests))
	}

	if g.lastRLStatus == nil || g.probing || !g.lastRLStatus.ResetAt.Equal(newRLStatus.ResetAt) {
		g.lastRLStatus = &newRLStatus
		g.probing = false
		log()

		return
	}

	if newRLStatus.Remaining < g.lastRLStatus.Remaining {
		g.lastRLStatus = &newRLStatus
		log()
	}
}

// reserveRL reserves one unit of the budget or blocks until one is available.
// It returns an error when ctx is done first.
func (g *GradeWorker) reserveRL(ctx context.Context) error {
	for {
		g.mu.Lock()

		if g.lastRLStatus == nil {
			g.lastRLStatus = &grader.RateLimitStatus{
				Limit:     1,
				Remaining: 1,
				ResetAt:   time.Now().Add(365 * 24 * time.Hour),
			}
			g.probing = true
		}

		remaining := g.lastRLStatus.Remaining
		if time.Now().After(g.lastRLStatus.ResetAt) {
			remaining = g.lastRLStatus.Limit
		}

		if remaining-g.inFlightRequests > 0 {
			logger.Debug(ctx, "reserved rate limit slot",
				zap.Int("remaining", remaining),
				zap.Int("limit", g.lastRLStatus.Limit),
				zap.Time("resetAt", g.lastRLStatus.ResetAt),
				zap.Int("inFlight", g.inFlightRequests))
			g.inFlightRequests++
			g.mu.Unlock()

			return nil
		}

		resetAt := g.lastRLStatus.ResetAt
		limit := g.lastRLStatus.Limit
		inFlight := g.inFlightRequests
		g.mu.Unlock()

		logger.Debug(ctx, "waiting for rate limit slot",
			zap.Int("remaining", remaining),
			zap.Int("limit", limit),
			zap.Time("resetAt", resetAt),
			zap.Int("inFlight", inFlight))

		timer := time.NewTimer(time.Until(resetAt))
		select {
		case <-ctx.Done():
			timer.Stop()

			return fmt.Errorf("timeout waiting for rate limit: %w", ctx.Err())
		case <-g.requestFinishedChan:
			timer.Stop()
		case <-timer.C:
		}
	}
}
