package controller

import (
	"net/http"
	"rightfit/pkg/ratelimit"
	"strconv"
	"time"
)

// WithRateLimit returns a middleware that allows at most limit requests per
// client IP and window under the given scope. Rejected requests get a 429
// JSON error with Retry-After. A non-positive limit disables the check.
func WithRateLimit(limiter ratelimit.Limiter, scope string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := limiter.Allow(r.Context(), scope+":"+GetClientIP(r), limit, window)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining()))
			if !d.ResetAt.IsZero() {
				h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
			}

			if !d.Allowed {
				retry := int(time.Until(d.ResetAt).Seconds() + 0.999)
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.Itoa(retry))
				h.Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"too many requests","code":"RATE_LIMITED","status":429}`))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
