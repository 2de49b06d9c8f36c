package controller

import (
	"net/http"
	"rightfit/pkg/logger"
	"runtime/debug"

	"go.uber.org/zap"
)

// WithRecover returns a middleware that turns a panic in the downstream
// handler into a 500 response and logs the stack.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler { //nolint: errorlint,err113
				panic(rv)
			}

			logger.Error(r.Context(), "panic while serving request",
				zap.Any("panic", rv),
				zap.ByteString("stack", debug.Stack()),
				zap.String("url", r.URL.String()),
			)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"internal error","code":"INTERNAL","status":500}`))
		}()

		next.ServeHTTP(w, r)
	})
}
