package telemetry

import (
	"context"

	sdklogs "go.opentelemetry.io/otel/sdk/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Exporters used when no OTEL_*_EXPORTER is configured, so an unconfigured process
// never dials the default OTLP endpoint.

type noopSpanExporter struct{}

var _ sdktrace.SpanExporter = noopSpanExporter{}

func (noopSpanExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error { return nil }

func (noopSpanExporter) Shutdown(context.Context) error { return nil }

type noopLogExporter struct{}

var _ sdklogs.Exporter = noopLogExporter{}

func (noopLogExporter) Export(context.Context, []sdklogs.Record) error { return nil }

func (noopLogExporter) Shutdown(context.Context) error { return nil }

func (noopLogExporter) ForceFlush(context.Context) error { return nil }
