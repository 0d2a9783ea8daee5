package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps span lifecycle around completion calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartSpan returns a derived context carrying the span.
type Tracer interface {
	// StartSpan starts a span for the named operation with call attributes.
	StartSpan(ctx context.Context, op string, meta CallMeta) (context.Context, trace.Span)

	// EndSpan finishes the span, recording err when non-nil.
	EndSpan(span trace.Span, err error)
}

type otelTracer struct {
	tracer trace.Tracer
}

// NewTracer wraps an OpenTelemetry tracer in the call-centric interface.
func NewTracer(t trace.Tracer) Tracer {
	return &otelTracer{tracer: t}
}

func (t *otelTracer) StartSpan(ctx context.Context, op string, meta CallMeta) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("llm.model", meta.Model),
		attribute.String("cache.namespace", meta.Namespace),
		attribute.String("cache.key", meta.Key),
	))
}

func (t *otelTracer) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer starts non-recording spans.
type noopTracer struct{}

func (noopTracer) StartSpan(ctx context.Context, op string, meta CallMeta) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (noopTracer) EndSpan(span trace.Span, err error) {}
