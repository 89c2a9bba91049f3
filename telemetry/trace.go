package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by lingo spans and metrics.
//
//nolint:gochecknoglobals // OpenTelemetry attribute keys must be global for reuse
var (
	AttrPackageKey  = attribute.Key("lingo_package")
	AttrStatusKey   = attribute.Key("lingo_status")
	AttrLocaleKey   = attribute.Key("lingo_locale")
	AttrDetectorKey = attribute.Key("lingo_detector")
	AttrRouteKey    = attribute.Key("lingo_route")
)

// Tracer starts spans for a package and records their latency when they end.
type Tracer struct {
	name    string
	tracer  trace.Tracer
	latency metric.Float64Histogram
}

// NewTracer creates a tracer for a package from the global providers.
func NewTracer(name string, options ...trace.TracerOption) *Tracer {
	return &Tracer{
		name:    name,
		tracer:  otel.Tracer(name, options...),
		latency: LatencyMeasure(name),
	}
}

// Span is a started span with the moment it started.
type Span struct {
	trace.Span
	started time.Time
}

// Start creates and starts a span. The caller ends it with Tracer.End.
//
//nolint:spancheck // spans are returned to the caller who ends them
func (t *Tracer) Start(ctx context.Context, spanName string, options ...trace.SpanStartOption) (context.Context, *Span) {
	ctx, span := t.tracer.Start(ctx, t.name+"/"+spanName, options...)
	return ctx, &Span{Span: span, started: time.Now()}
}

// End completes a span with error information if applicable and records its latency
// with attrs.
func (t *Tracer) End(ctx context.Context, span *Span, err error, attrs ...attribute.KeyValue) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attrs...)
	span.End()

	attrs = append(attrs, AttrStatusKey.String(ErrorCode(err)))
	t.latency.Record(ctx, float64(time.Since(span.started).Microseconds())/1000.0, metric.WithAttributes(attrs...))
}

func ErrorCode(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "deadline exceeded"
	}
	return "err"
}
