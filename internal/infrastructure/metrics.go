package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GainerMetrics holds the instruments recorded while normalizing gainers.
type GainerMetrics struct {
	RowsProcessed metric.Int64Counter
	RunsTotal     metric.Int64Counter
	RunDuration   metric.Float64Histogram
}

// CreateGainerMetrics registers the gainers instruments on meter.
func CreateGainerMetrics(meter metric.Meter) (*GainerMetrics, error) {
	rowsProcessed, err := meter.Int64Counter(
		"gainers_rows_processed_total",
		metric.WithDescription("Raw gainers rows processed, by source and outcome"),
	)
	if err != nil {
		return nil, err
	}

	runsTotal, err := meter.Int64Counter(
		"gainers_runs_total",
		metric.WithDescription("Gainers pipeline runs, by source and status"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"gainers_run_duration_seconds",
		metric.WithDescription("Gainers pipeline run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &GainerMetrics{
		RowsProcessed: rowsProcessed,
		RunsTotal:     runsTotal,
		RunDuration:   runDuration,
	}, nil
}

// RecordRows adds n rows with the given outcome. Safe on a nil receiver.
func (m *GainerMetrics) RecordRows(ctx context.Context, source, outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.RowsProcessed.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
}

// RecordRun records one pipeline run. Safe on a nil receiver.
func (m *GainerMetrics) RecordRun(ctx context.Context, source string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("source", source),
		attribute.String("status", status),
	)
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// HTTPMetrics holds the instruments recorded by the HTTP middleware.
type HTTPMetrics struct {
	RequestsTotal   metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ActiveRequests  metric.Int64UpDownCounter
}

// CreateHTTPMetrics registers the HTTP server instruments on meter.
func CreateHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requestsTotal, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of in-flight HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		RequestsTotal:   requestsTotal,
		RequestDuration: requestDuration,
		ActiveRequests:  activeRequests,
	}, nil
}
