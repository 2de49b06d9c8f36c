// Package metrics holds the Prometheus collectors and OpenTelemetry
// instruments shared by the HTTP layer, services and workers.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MeterName is the instrumentation scope of the business counters.
const MeterName = "rightfit"

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// NewHTTPDuration creates and registers the request latency histogram
// labelled by method, route pattern and status code.
func NewHTTPDuration(reg prometheus.Registerer) (*prometheus.HistogramVec, error) {
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rightfit",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests.",
		Buckets:   DefaultBuckets,
	}, []string{"method", "route", "status"})
	if err := reg.Register(h); err != nil {
		return nil, fmt.Errorf("could not register http duration histogram: %w", err)
	}

	return h, nil
}

// NewMeterProvider creates an OpenTelemetry meter provider whose instruments
// are exported through reg, so they are served by the Prometheus handler.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Business groups the OpenTelemetry counters for domain events.
type Business struct {
	submissions metric.Int64Counter
	payments    metric.Int64Counter
	grades      metric.Int64Counter
	emails      metric.Int64Counter
	leads       metric.Int64Counter
}

// NewBusiness creates the business counters on the given meter.
func NewBusiness(meter metric.Meter) (*Business, error) {
	var (
		b   Business
		err error
	)
	if b.submissions, err = meter.Int64Counter("rightfit_submissions",
		metric.WithDescription("Intake submissions stored.")); err != nil {
		return nil, fmt.Errorf("could not create submissions counter: %w", err)
	}
	if b.payments, err = meter.Int64Counter("rightfit_payments",
		metric.WithDescription("Payment events by status.")); err != nil {
		return nil, fmt.Errorf("could not create payments counter: %w", err)
	}
	if b.grades, err = meter.Int64Counter("rightfit_grades",
		metric.WithDescription("CV grades produced.")); err != nil {
		return nil, fmt.Errorf("could not create grades counter: %w", err)
	}
	if b.emails, err = meter.Int64Counter("rightfit_emails",
		metric.WithDescription("Transactional emails sent.")); err != nil {
		return nil, fmt.Errorf("could not create emails counter: %w", err)
	}
	if b.leads, err = meter.Int64Counter("rightfit_leads",
		metric.WithDescription("Leads captured.")); err != nil {
		return nil, fmt.Errorf("could not create leads counter: %w", err)
	}

	return &b, nil
}

// Noop returns counters that record nothing. Useful in tests and CLI commands.
func Noop() *Business {
	b, _ := NewBusiness(noop.NewMeterProvider().Meter("noop"))

	return b
}

// SubmissionStored counts a stored submission for the given package.
func (b *Business) SubmissionStored(ctx context.Context, pkg string) {
	b.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("package", pkg)))
}

// PaymentEvent counts a payment state change.
func (b *Business) PaymentEvent(ctx context.Context, status string) {
	b.payments.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// GradeProduced counts a grade, split by origin (free audit or submission) and demo mode.
func (b *Business) GradeProduced(ctx context.Context, origin string, demo bool) {
	b.grades.Add(ctx, 1, metric.WithAttributes(
		attribute.String("origin", origin),
		attribute.Bool("demo", demo)))
}

// EmailSent counts an email by template and outcome.
func (b *Business) EmailSent(ctx context.Context, template string, ok bool) {
	b.emails.Add(ctx, 1, metric.WithAttributes(
		attribute.String("template", template),
		attribute.Bool("ok", ok)))
}

// LeadCaptured counts a captured lead by source.
func (b *Business) LeadCaptured(ctx context.Context, source string) {
	b.leads.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}
