package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics.
// It implements the recorder ports of the query client, pagination walker,
// batch runner and insight views.
type Metrics struct {
	meter metric.Meter

	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPRequestsActive  metric.Int64UpDownCounter

	// NerdGraph metrics
	NerdGraphRequestsTotal   metric.Int64Counter
	NerdGraphRequestDuration metric.Float64Histogram
	PagesFetchedTotal        metric.Int64Counter
	PageItemsTotal           metric.Int64Counter

	// Fan-out metrics
	BatchTasksTotal metric.Int64Counter

	// View metrics
	ViewsComputedTotal   metric.Int64Counter
	ViewComputeDuration  metric.Float64Histogram
	ViewsSupersededTotal metric.Int64Counter

	// Digest metrics
	DigestsSentTotal metric.Int64Counter
}

// NewMetrics creates and registers all application metrics.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{meter: meter}

	var err error

	// HTTP metrics
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}

	m.HTTPRequestsActive, err = meter.Int64UpDownCounter(
		"http.server.requests.active",
		metric.WithDescription("Number of active HTTP requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating http_requests_active: %w", err)
	}

	// NerdGraph metrics
	m.NerdGraphRequestsTotal, err = meter.Int64Counter(
		"nerdgraph.requests.total",
		metric.WithDescription("Total number of NerdGraph requests"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nerdgraph_requests_total: %w", err)
	}

	m.NerdGraphRequestDuration, err = meter.Float64Histogram(
		"nerdgraph.request.duration",
		metric.WithDescription("NerdGraph request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating nerdgraph_request_duration: %w", err)
	}

	m.PagesFetchedTotal, err = meter.Int64Counter(
		"pagination.pages.total",
		metric.WithDescription("Total number of result pages fetched"),
		metric.WithUnit("{pages}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pages_fetched_total: %w", err)
	}

	m.PageItemsTotal, err = meter.Int64Counter(
		"pagination.items.total",
		metric.WithDescription("Total number of items read from result pages"),
		metric.WithUnit("{items}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating page_items_total: %w", err)
	}

	// Fan-out metrics
	m.BatchTasksTotal, err = meter.Int64Counter(
		"batch.tasks.total",
		metric.WithDescription("Total number of settled fan-out tasks"),
		metric.WithUnit("{tasks}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating batch_tasks_total: %w", err)
	}

	// View metrics
	m.ViewsComputedTotal, err = meter.Int64Counter(
		"views.computed.total",
		metric.WithDescription("Total number of insight views computed"),
		metric.WithUnit("{views}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating views_computed_total: %w", err)
	}

	m.ViewComputeDuration, err = meter.Float64Histogram(
		"views.compute.duration",
		metric.WithDescription("Insight view computation duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating view_compute_duration: %w", err)
	}

	m.ViewsSupersededTotal, err = meter.Int64Counter(
		"views.superseded.total",
		metric.WithDescription("Total number of view results discarded because a newer request replaced them"),
		metric.WithUnit("{views}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating views_superseded_total: %w", err)
	}

	// Digest metrics
	m.DigestsSentTotal, err = meter.Int64Counter(
		"digests.sent.total",
		metric.WithDescription("Total number of scorecard digests posted"),
		metric.WithUnit("{digests}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating digests_sent_total: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records HTTP request metrics.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	}

	m.HTTPRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// AddActiveRequests moves the in-flight request gauge by delta.
func (m *Metrics) AddActiveRequests(ctx context.Context, delta int64) {
	m.HTTPRequestsActive.Add(ctx, delta)
}

// RecordNerdGraphRequest records one query API round trip.
func (m *Metrics) RecordNerdGraphRequest(ctx context.Context, operation string, success bool, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	}

	m.NerdGraphRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.NerdGraphRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordPageFetched records one page of a paginated query.
func (m *Metrics) RecordPageFetched(ctx context.Context, request string, items int) {
	attrs := metric.WithAttributes(attribute.String("request", request))

	m.PagesFetchedTotal.Add(ctx, 1, attrs)
	m.PageItemsTotal.Add(ctx, int64(items), attrs)
}

// RecordBatchTask records one settled fan-out task.
func (m *Metrics) RecordBatchTask(ctx context.Context, batch string, success bool) {
	m.BatchTasksTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("batch", batch),
		attribute.Bool("success", success),
	))
}

// RecordView records one computed insight view.
func (m *Metrics) RecordView(ctx context.Context, view string, duration time.Duration, degraded bool) {
	attrs := []attribute.KeyValue{
		attribute.String("view", view),
		attribute.Bool("degraded", degraded),
	}

	m.ViewsComputedTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ViewComputeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordViewSuperseded records a view result discarded in favour of a newer request.
func (m *Metrics) RecordViewSuperseded(ctx context.Context, view string) {
	m.ViewsSupersededTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("view", view)))
}

// RecordDigestSent records a scorecard digest delivery attempt.
func (m *Metrics) RecordDigestSent(ctx context.Context, notifier string, success bool) {
	m.DigestsSentTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("notifier", notifier),
		attribute.Bool("success", success),
	))
}
