package controller_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"rightfit/pkg/controller"
	"rightfit/pkg/ratelimit"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWithRateLimit(t *testing.T) {
	limiter := ratelimit.NewMemory()
	defer limiter.Close()

	h := controller.WithRateLimit(limiter, "intake", 2, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/intake", nil)
		req.RemoteAddr = ip + ":5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec
	}

	rec := do("10.0.0.1")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

	require.Equal(t, http.StatusNoContent, do("10.0.0.1").Code)

	rec = do("10.0.0.1")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.JSONEq(t, `{"error":"too many requests","code":"RATE_LIMITED","status":429}`, rec.Body.String())

	require.Equal(t, http.StatusNoContent, do("10.0.0.2").Code, "other clients keep their own budget")
}

func TestWithRateLimit_Disabled(t *testing.T) {
	limiter := ratelimit.NewMemory()
	defer limiter.Close()

	h := controller.WithRateLimit(limiter, "intake", 0, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestWithRateLimit_IgnoresSpoofedForwardedFor(t *testing.T) {
	limiter := ratelimit.NewMemory()
	defer limiter.Close()

	proxies, err := controller.ParseTrustedProxies([]string{"192.168.0.10"})
	require.NoError(t, err)
	h := controller.WithClientIP(proxies)(
		controller.WithRateLimit(limiter, "grade-cv", 1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))

	do := func(remote, xff string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/grade-cv", nil)
		req.RemoteAddr = remote + ":5555"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		return rec.Code
	}

	// a direct client rotating the header still shares one budget
	require.Equal(t, http.StatusOK, do("203.0.113.7", "10.0.0.0"))
	for i := 1; i < 5; i++ {
		require.Equal(t, http.StatusTooManyRequests, do("203.0.113.7", fmt.Sprintf("10.0.0.%d", i)))
	}

	// behind the trusted proxy the rightmost hop is the client, whatever it prepends
	require.Equal(t, http.StatusOK, do("192.168.0.10", "1.1.1.1, 198.51.100.4"))
	require.Equal(t, http.StatusTooManyRequests, do("192.168.0.10", "2.2.2.2, 198.51.100.4"))
}
