package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestTelemetry(t *testing.T) (*Telemetry, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	tel, err := newTelemetry("", "test", reader)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tel.Shutdown(context.Background()) })
	return tel, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)

	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestNewTelemetry_DefaultServiceName(t *testing.T) {
	tel, _ := newTestTelemetry(t)
	assert.NotNil(t, tel.Metrics)
	assert.NotNil(t, tel.TracerProvider)
	assert.NotNil(t, tel.Handler())
}

func TestMetrics_RecordNerdGraphRequest(t *testing.T) {
	tel, reader := newTestTelemetry(t)
	ctx := context.Background()

	tel.Metrics.RecordNerdGraphRequest(ctx, "nrql", true, 250*time.Millisecond)
	tel.Metrics.RecordNerdGraphRequest(ctx, "nrql", true, time.Second)
	tel.Metrics.RecordNerdGraphRequest(ctx, "nrql", false, time.Second)

	metrics := collect(t, reader)
	total := metrics["nerdgraph.requests.total"]
	assert.Equal(t, int64(2), sumFor(t, total, attribute.String("operation", "nrql"), attribute.Bool("success", true)))
	assert.Equal(t, int64(1), sumFor(t, total, attribute.String("operation", "nrql"), attribute.Bool("success", false)))

	hist, ok := metrics["nerdgraph.request.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestMetrics_RecordPageFetched(t *testing.T) {
	tel, reader := newTestTelemetry(t)
	ctx := context.Background()

	tel.Metrics.RecordPageFetched(ctx, "issues", 100)
	tel.Metrics.RecordPageFetched(ctx, "issues", 12)

	metrics := collect(t, reader)
	req := attribute.String("request", "issues")
	assert.Equal(t, int64(2), sumFor(t, metrics["pagination.pages.total"], req))
	assert.Equal(t, int64(112), sumFor(t, metrics["pagination.items.total"], req))
}

func TestMetrics_RecordBatchAndViews(t *testing.T) {
	tel, reader := newTestTelemetry(t)
	ctx := context.Background()

	tel.Metrics.RecordBatchTask(ctx, "alert_counts", true)
	tel.Metrics.RecordBatchTask(ctx, "alert_counts", false)
	tel.Metrics.RecordView(ctx, "overview", time.Second, true)
	tel.Metrics.RecordViewSuperseded(ctx, "overview")
	tel.Metrics.RecordDigestSent(ctx, "slack", true)

	metrics := collect(t, reader)
	batch := attribute.String("batch", "alert_counts")
	assert.Equal(t, int64(1), sumFor(t, metrics["batch.tasks.total"], batch, attribute.Bool("success", true)))
	assert.Equal(t, int64(1), sumFor(t, metrics["batch.tasks.total"], batch, attribute.Bool("success", false)))
	assert.Equal(t, int64(1), sumFor(t, metrics["views.computed.total"],
		attribute.String("view", "overview"), attribute.Bool("degraded", true)))
	assert.Equal(t, int64(1), sumFor(t, metrics["views.superseded.total"], attribute.String("view", "overview")))
	assert.Equal(t, int64(1), sumFor(t, metrics["digests.sent.total"],
		attribute.String("notifier", "slack"), attribute.Bool("success", true)))
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	tel, reader := newTestTelemetry(t)

	tel.Metrics.RecordHTTPRequest(context.Background(), "GET", "/api/v1/overview", 200, 10*time.Millisecond)

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumFor(t, metrics["http.server.requests.total"],
		attribute.String("http.method", "GET"),
		attribute.String("http.route", "/api/v1/overview"),
		attribute.Int("http.status_code", 200),
	))
}

func TestMetrics_AddActiveRequests(t *testing.T) {
	tel, reader := newTestTelemetry(t)
	ctx := context.Background()

	tel.Metrics.AddActiveRequests(ctx, 1)
	tel.Metrics.AddActiveRequests(ctx, 1)
	tel.Metrics.AddActiveRequests(ctx, -1)

	assert.Equal(t, int64(1), sumFor(t, collect(t, reader)["http.server.requests.active"]))
}
