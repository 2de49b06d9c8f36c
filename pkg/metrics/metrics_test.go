package metrics_test

import (
	"context"
	"rightfit/pkg/metrics"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestNewHTTPDuration_RegistersOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := metrics.NewHTTPDuration(reg)
	require.NoError(t, err)

	h.WithLabelValues("GET", "/healthz", "200").Observe(0.01)
	require.Equal(t, 1, testutil.CollectAndCount(h))

	_, err = metrics.NewHTTPDuration(reg)
	require.Error(t, err, "second registration must fail")
}

func TestBusiness_RecordsCounters(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	b, err := metrics.NewBusiness(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	b.SubmissionStored(ctx, "essential")
	b.SubmissionStored(ctx, "essential")
	b.GradeProduced(ctx, "free_audit", true)
	b.EmailSent(ctx, "order_confirmation", true)
	b.LeadCaptured(ctx, "free_audit")
	b.PaymentEvent(ctx, "paid")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]int64{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		sum, ok := m.Data.(metricdata.Sum[int64])
		require.True(t, ok, m.Name)
		for _, dp := range sum.DataPoints {
			names[m.Name] += dp.Value
		}
	}
	require.Equal(t, int64(2), names["rightfit_submissions"])
	require.Equal(t, int64(1), names["rightfit_grades"])
	require.Equal(t, int64(1), names["rightfit_emails"])
	require.Equal(t, int64(1), names["rightfit_leads"])
	require.Equal(t, int64(1), names["rightfit_payments"])
}

func TestNoop(t *testing.T) {
	b := metrics.Noop()
	require.NotPanics(t, func() {
		b.SubmissionStored(context.Background(), "executive")
	})
}

func TestNewMeterProvider_ExportsToPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	mp, err := metrics.NewMeterProvider(reg)
	require.NoError(t, err)
	defer func() { _ = mp.Shutdown(context.Background()) }()

	b, err := metrics.NewBusiness(mp.Meter(metrics.MeterName))
	require.NoError(t, err)
	b.LeadCaptured(context.Background(), "newsletter")

	families, err := reg.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "rightfit_leads_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			require.InDelta(t, 1, f.GetMetric()[0].GetCounter().GetValue(), 0)
		}
	}
	require.True(t, found, "lead counter not exported")
}
