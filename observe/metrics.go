package observe

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records completion-call measurements.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: recording is best-effort and must not fail the caller.
type Metrics interface {
	// RecordLookup records a cache lookup and whether it hit.
	RecordLookup(ctx context.Context, meta CallMeta, hit bool)

	// RecordUpstream records an upstream call, its attempt count, and outcome.
	RecordUpstream(ctx context.Context, meta CallMeta, attempts int, err error)

	// RecordRequest records an end-to-end request duration and outcome.
	RecordRequest(ctx context.Context, meta CallMeta, duration time.Duration, err error)
}

type otelMetrics struct {
	lookups   metric.Int64Counter
	upstream  metric.Int64Counter
	retries   metric.Int64Counter
	durations metric.Float64Histogram
}

// NewMetrics creates the standard instrument set on the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookups, err := meter.Int64Counter("llmcache.lookups",
		metric.WithDescription("Cache lookups by namespace and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create lookup counter: %w", err)
	}

	upstream, err := meter.Int64Counter("llmcache.upstream.calls",
		metric.WithDescription("Upstream completion calls by model and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create upstream counter: %w", err)
	}

	retries, err := meter.Int64Counter("llmcache.upstream.retries",
		metric.WithDescription("Upstream retry attempts beyond the first"),
	)
	if err != nil {
		return nil, fmt.Errorf("create retry counter: %w", err)
	}

	durations, err := meter.Float64Histogram("llmcache.request.duration_ms",
		metric.WithDescription("End-to-end request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create duration histogram: %w", err)
	}

	return &otelMetrics{
		lookups:   lookups,
		upstream:  upstream,
		retries:   retries,
		durations: durations,
	}, nil
}

func (m *otelMetrics) RecordLookup(ctx context.Context, meta CallMeta, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.lookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("namespace", meta.Namespace),
		attribute.String("outcome", outcome),
	))
}

func (m *otelMetrics) RecordUpstream(ctx context.Context, meta CallMeta, attempts int, err error) {
	m.upstream.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", meta.Model),
		attribute.Bool("error", err != nil),
	))
	if attempts > 1 {
		m.retries.Add(ctx, int64(attempts-1), metric.WithAttributes(
			attribute.String("model", meta.Model),
		))
	}
}

func (m *otelMetrics) RecordRequest(ctx context.Context, meta CallMeta, duration time.Duration, err error) {
	m.durations.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("namespace", meta.Namespace),
		attribute.String("model", meta.Model),
		attribute.Bool("error", err != nil),
	))
}

// noopMetrics discards all measurements.
type noopMetrics struct{}

func (noopMetrics) RecordLookup(ctx context.Context, meta CallMeta, hit bool)                    {}
func (noopMetrics) RecordUpstream(ctx context.Context, meta CallMeta, attempts int, err error)   {}
func (noopMetrics) RecordRequest(ctx context.Context, meta CallMeta, d time.Duration, err error) {}
