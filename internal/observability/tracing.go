package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jagadeesh/repofeed"

// Tracer records ingestion outcomes. Without a configured SDK the global
// provider is a no-op.
type Tracer struct {
	tracer trace.Tracer
}

func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(tracerName)}
}

// StartIngestSpan starts a span for one webhook delivery.
func (t *Tracer) StartIngestSpan(ctx context.Context, eventTag, deliveryID string) (context.Context, trace.Span) {
	if t == nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.tracer.Start(ctx, "repofeed.ingest",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("github.event", eventTag),
			attribute.String("github.delivery_id", deliveryID),
		),
	)
}

// EndIngestSpan annotates the span with the outcome and internal failure,
// if any, then ends it.
func (t *Tracer) EndIngestSpan(span trace.Span, outcome, requestID string, err error) {
	span.SetAttributes(
		attribute.String("repofeed.outcome", outcome),
		attribute.String("repofeed.request_id", requestID),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
