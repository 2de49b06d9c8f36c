// Package ratelimit provides fixed-window request counters keyed by an
// arbitrary string (usually route + client IP).
//
// Limiters fail open: when the backing store errors the request is allowed
// and the error is logged.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed bool
	// Count is the number of hits recorded in the current window, including
	// this one when it was allowed.
	Count int
	Limit int
	// ResetAt is when the current window ends.
	ResetAt time.Time
}

// Remaining returns how many hits are left in the window.
func (d Decision) Remaining() int {
	if r := d.Limit - d.Count; r > 0 {
		return r
	}

	return 0
}

// Limiter counts hits per key in fixed windows.
type Limiter interface {
	// Allow records a hit for key and reports whether it is within limit for
	// the window. A non-positive limit always allows.
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
	Close() error
}

func normalize(limit int, window time.Duration) (bool, time.Duration) {
	if window <= 0 {
		window = time.Minute
	}

	return limit <= 0, window
}
