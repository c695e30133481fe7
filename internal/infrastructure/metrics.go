package infrastructure

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ScreenMetrics holds the instruments recorded by the screener service
// and the HTTP middleware.
type ScreenMetrics struct {
	ScreenRunsTotal     metric.Int64Counter
	ScreenRunDuration   metric.Float64Histogram
	ScreenRowsInput     metric.Int64Histogram
	ScreenRowsOutput    metric.Int64Histogram
	StepsSkippedTotal   metric.Int64Counter
	TableLoadsTotal     metric.Int64Counter
	ExportsTotal        metric.Int64Counter
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter
}

// NewScreenMetrics registers the screener instruments on meter.
func NewScreenMetrics(meter metric.Meter) (*ScreenMetrics, error) {
	m := &ScreenMetrics{}
	var err error

	if m.ScreenRunsTotal, err = meter.Int64Counter("screen_runs_total",
		metric.WithDescription("Screen pipeline runs"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create screen_runs_total: %w", err)
	}

	if m.ScreenRunDuration, err = meter.Float64Histogram("screen_run_duration_seconds",
		metric.WithDescription("Screen pipeline run duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1),
	); err != nil {
		return nil, fmt.Errorf("failed to create screen_run_duration_seconds: %w", err)
	}

	rowBuckets := metric.WithExplicitBucketBoundaries(0, 10, 50, 100, 250, 500, 1000, 5000)
	if m.ScreenRowsInput, err = meter.Int64Histogram("screen_rows_input",
		metric.WithDescription("Rows entering a screen run"),
		metric.WithUnit("{row}"),
		rowBuckets,
	); err != nil {
		return nil, fmt.Errorf("failed to create screen_rows_input: %w", err)
	}
	if m.ScreenRowsOutput, err = meter.Int64Histogram("screen_rows_output",
		metric.WithDescription("Rows left after a screen run"),
		metric.WithUnit("{row}"),
		rowBuckets,
	); err != nil {
		return nil, fmt.Errorf("failed to create screen_rows_output: %w", err)
	}

	if m.StepsSkippedTotal, err = meter.Int64Counter("screen_steps_skipped_total",
		metric.WithDescription("Pipeline steps skipped, by step and reason"),
	); err != nil {
		return nil, fmt.Errorf("failed to create screen_steps_skipped_total: %w", err)
	}

	if m.TableLoadsTotal, err = meter.Int64Counter("table_loads_total",
		metric.WithDescription("Workbook loads, by outcome"),
	); err != nil {
		return nil, fmt.Errorf("failed to create table_loads_total: %w", err)
	}

	if m.ExportsTotal, err = meter.Int64Counter("screen_exports_total",
		metric.WithDescription("Filtered table exports, by format"),
	); err != nil {
		return nil, fmt.Errorf("failed to create screen_exports_total: %w", err)
	}

	if m.HTTPRequestsTotal, err = meter.Int64Counter("http_requests_total",
		metric.WithDescription("HTTP requests served"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total: %w", err)
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds: %w", err)
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter("http_active_requests",
		metric.WithDescription("HTTP requests in flight"),
	); err != nil {
		return nil, fmt.Errorf("failed to create http_active_requests: %w", err)
	}

	return m, nil
}

// RecordScreenRun records one pipeline run. skipped maps step name to the
// reason it was skipped.
func (m *ScreenMetrics) RecordScreenRun(ctx context.Context, duration time.Duration, rowsIn, rowsOut int, filtersEnabled bool, skipped map[string]string) {
	if m == nil {
		return
	}
	runAttrs := metric.WithAttributes(attribute.Bool("filters_enabled", filtersEnabled))
	m.ScreenRunsTotal.Add(ctx, 1, runAttrs)
	m.ScreenRunDuration.Record(ctx, duration.Seconds(), runAttrs)
	m.ScreenRowsInput.Record(ctx, int64(rowsIn))
	m.ScreenRowsOutput.Record(ctx, int64(rowsOut))
	for step, reason := range skipped {
		m.StepsSkippedTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("step", step),
			attribute.String("reason", reason),
		))
	}
}

// RecordTableLoad counts a workbook load attempt.
func (m *ScreenMetrics) RecordTableLoad(ctx context.Context, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.TableLoadsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordExport counts an export of the given format.
func (m *ScreenMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}
