// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the RightFit service.
package api

import (
	_ "embed"
	"fmt"
	"net/http"
	"rightfit/internal/api/handler/v1handler"
	"rightfit/internal/config"
	"rightfit/pkg/controller"
	"rightfit/pkg/metrics"
	"rightfit/pkg/ratelimit"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// RiverUIPrefix is where the job dashboard is mounted.
const RiverUIPrefix = "/riverui"

// RateLimits holds the per-IP budgets of the public endpoints that call paid
// providers or send email. A non-positive limit disables the check.
type RateLimits struct {
	Window     time.Duration
	GradeCV    int
	Leads      int
	ResendLink int
}

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// All durations are used to configure server timeouts, and zero values
// should be considered as using the defaults provided by net/http where applicable.
type Options struct {
	// HandlerOptions configures the v1 handlers.
	HandlerOptions v1handler.Options
	// RateLimits configures the public endpoint budgets.
	RateLimits RateLimits

	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// AllowedOrigins lists the browser origins allowed by CORS.
	AllowedOrigins []string
	// TrustedProxies lists the proxies allowed to set the client address.
	TrustedProxies []string
	// EnablePprof mounts /debug/pprof.
	EnablePprof bool
}

// NewOptions constructs an Options value from the provided application configuration.
// It maps HTTP server-related settings from config.Config to the Options used by the API server.
func NewOptions(cfg *config.Config) Options {
	return Options{
		HandlerOptions: v1handler.NewOptions(cfg),
		RateLimits: RateLimits{
			Window:     cfg.RateLimit.Window,
			GradeCV:    cfg.RateLimit.GradeCV,
			Leads:      cfg.RateLimit.Leads,
			ResendLink: cfg.RateLimit.ResendLink,
		},

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		TrustedProxies:    cfg.HTTP.TrustedProxies,
		EnablePprof:       cfg.HTTP.EnablePprof,
	}
}

type Deps struct {
	v1handler.Deps

	// Limiter backs the public endpoint rate limits. Nil disables them.
	Limiter ratelimit.Limiter
	// RiverUI serves the job dashboard under RiverUIPrefix. It is nil when
	// jobs do not run on River.
	RiverUI http.Handler
	// Registerer receives the HTTP latency histogram. Defaults to
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
	// Gatherer backs the metrics endpoint. Defaults to
	// prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the routes of the service:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - public /api routes and the session-protected /api/admin routes
// - the River UI and pprof endpoints when enabled
func NewRouter(deps Deps, opts Options) (http.Handler, error) {
	reg, gatherer := deps.Registerer, deps.Gatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	hist, err := metrics.NewHTTPDuration(reg)
	if err != nil {
		return nil, err
	}

	h := v1handler.New(deps.Deps, opts.HandlerOptions)
	limit := func(scope string, n int) func(http.Handler) http.Handler {
		if deps.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}

		return controller.WithRateLimit(deps.Limiter, scope, n, opts.RateLimits.Window)
	}

	r := chi.NewRouter()
	r.Use(controller.WithRecover, controller.WithMetrics(hist))
	r.NotFound(v1handler.NotFound)
	r.MethodNotAllowed(v1handler.MethodNotAllowed)

	// prometheus metrics server
	r.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// v1 specs file
	r.Get("/specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// v1 api swagger playground
	r.Handle("/v1/docs/*", v5emb.New(
		"RightFit CV API",
		"/specs/v1.yaml",
		"/v1/docs/",
	))

	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/quote", h.Quote)
		r.Post("/create-payment-intent", h.CreatePaymentIntent)
		r.Post("/submit-intake", h.SubmitIntake)
		r.With(limit("grade-cv", opts.RateLimits.GradeCV)).Post("/grade-cv", h.GradeCV)
		r.With(limit("leads", opts.RateLimits.Leads)).Post("/leads", h.CaptureLead)
		r.Get("/order-status", h.OrderStatus)
		r.Get("/order-status/file", h.DeliveredFile)
		r.With(limit("resend-link", opts.RateLimits.ResendLink)).Post("/order-status/resend", h.ResendOrderLink)
		r.Post("/webhooks/stripe", h.StripeWebhook)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)

			r.Group(func(r chi.Router) {
				r.Use(h.RequireSession)

				r.Get("/session", h.Session)
				r.Get("/submissions", h.ListSubmissions)
				r.Get("/submissions/{id}", h.GetSubmission)
				r.Patch("/submissions/{id}", h.PatchSubmission)
				r.Delete("/submissions/{id}", h.DeleteSubmission)
				r.Post("/submissions/{id}/notes", h.AddNote)
				r.Post("/submissions/{id}/deliver", h.Deliver)
				r.Post("/submissions/{id}/refund", h.Refund)
				r.Post("/submissions/{id}/regrade", h.Regrade)
				r.Get("/submissions/{id}/files/{kind}", h.File)
				r.Get("/leads", h.ListLeads)
				r.Get("/activity", h.RecentActivity)
				r.Get("/stats", h.Stats)
			})
		})
	})

	// river ui
	if deps.RiverUI != nil {
		r.With(h.RequireSession).Handle(RiverUIPrefix+"/*", deps.RiverUI)
	}

	// pprof
	if opts.EnablePprof {
		r.Handle(controller.PprofPrefix+"*", controller.PprofMux())
	}

	// cors
	handler := controller.WithCORS(opts.AllowedOrigins)(r)

	// logger
	handler = controller.WithLogger(handler)

	// client ip, used by the access log and the rate limits
	proxies, err := controller.ParseTrustedProxies(opts.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("could not parse trusted proxies: %w", err)
	}
	handler = controller.WithClientIP(proxies)(handler)

	return handler, nil
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It wraps the router with a request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	handler, err := NewRouter(deps, opts)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = opts.ReadTimeout
	}
	if timeout > 0 {
		handler = http.TimeoutHandler(handler, timeout,
			`{"error":"request timed out","code":"TIMEOUT","status":503}`)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}
