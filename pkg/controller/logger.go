package controller

import (
	"context"
	"net/http"
	"rightfit/pkg/logger"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxRequestIDLen = 128

// CtxKey types the values this package stores in request contexts.
type CtxKey string

// RequestIDKey holds the request id, taken from X-Request-Id or generated.
const RequestIDKey CtxKey = "RequestID"

// responseRecorder remembers what the handler sent so middleware can report it.
type responseRecorder struct {
	http.ResponseWriter

	status int
	bytes  int
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += n

	return n, err //nolint: wrapcheck
}

func requestID(r *http.Request) string {
	id := r.Header.Get("X-Request-Id")
	if id == "" || len(id) > maxRequestIDLen {
		return uuid.NewString()
	}

	return id
}

// WithLogger tags the request context with a request id and a logger
// carrying it, returns the id in X-Request-Id and writes one access log
// line per request. Server errors are logged at warn level. Only the path
// is logged since order-status query strings carry tokens.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		w.Header().Set("X-Request-Id", id)

		ctx := context.WithValue(r.Context(), RequestIDKey, id)
		ctx = logger.WithFields(ctx, zap.String(string(RequestIDKey), id))

		started := time.Now()
		rec := newResponseRecorder(w)
		next.ServeHTTP(rec, r.WithContext(ctx))

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status_code", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Float64("latency", time.Since(started).Seconds()),
			zap.String("client_ip", GetClientIP(r)),
			zap.String("user_agent", r.UserAgent()),
			zap.String("referer", r.Referer()),
		}
		if rec.status >= http.StatusInternalServerError {
			logger.Warn(ctx, "access log", fields...)

			return
		}
		logger.Info(ctx, "access log", fields...)
	})
}
