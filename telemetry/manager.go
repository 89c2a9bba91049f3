package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/exporters/autoexport"
	"go.opentelemetry.io/contrib/propagators/autoprop"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklogs "go.opentelemetry.io/otel/sdk/log"
	sdkmetrics "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.40.0"

	"github.com/pitabwire/lingo/config"
)

// Manager installs the global OpenTelemetry providers lingo reports to.
type Manager struct {
	serviceName    string
	serviceVersion string

	cfg config.ConfigurationTelemetry

	disabled bool
	views    []sdkmetrics.View

	traceTextMap      propagation.TextMapPropagator
	traceExporter     sdktrace.SpanExporter
	traceSampler      sdktrace.Sampler
	metricsReader     sdkmetrics.Reader
	traceLogsExporter sdklogs.Exporter

	resource *resource.Resource

	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetrics.MeterProvider
	loggerProvider *sdklogs.LoggerProvider
	logHandler     slog.Handler
}

// NewManager creates a telemetry setup manager.
func NewManager(ctx context.Context, cfg config.ConfigurationTelemetry, opts ...Option) *Manager {
	m := &Manager{cfg: cfg, serviceName: "lingo"}
	if cfg != nil {
		m.disabled = cfg.DisableOpenTelemetry()
		if name := cfg.TelemetryServiceName(); name != "" {
			m.serviceName = name
		}
	}

	for _, opt := range opts {
		opt(ctx, m)
	}
	return m
}

// Disabled reports whether Init leaves the global providers alone.
func (m *Manager) Disabled() bool {
	return m.disabled
}

// LogHandler is the handler bridging logs into OpenTelemetry, nil until Init.
func (m *Manager) LogHandler() slog.Handler {
	return m.logHandler
}

func (m *Manager) Init(ctx context.Context) error {
	if m.Disabled() {
		return nil
	}

	res, err := m.setupResource(ctx)
	if err != nil {
		return err
	}
	m.resource = res

	if m.traceTextMap == nil {
		m.traceTextMap = autoprop.NewTextMapPropagator()
	}

	if m.traceSampler == nil {
		ratio := 1.0
		if m.cfg != nil {
			ratio = m.cfg.SamplingRatio()
		}
		m.traceSampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}

	if m.traceExporter == nil {
		m.traceExporter, err = autoexport.NewSpanExporter(ctx,
			autoexport.WithFallbackSpanExporter(func(context.Context) (sdktrace.SpanExporter, error) {
				return noopSpanExporter{}, nil
			}))
		if err != nil {
			return err
		}
	}

	if m.metricsReader == nil {
		m.metricsReader, err = autoexport.NewMetricReader(ctx,
			autoexport.WithFallbackMetricReader(func(context.Context) (sdkmetrics.Reader, error) {
				return sdkmetrics.NewManualReader(), nil
			}))
		if err != nil {
			return err
		}
	}

	if m.traceLogsExporter == nil {
		m.traceLogsExporter, err = autoexport.NewLogExporter(ctx,
			autoexport.WithFallbackLogExporter(func(context.Context) (sdklogs.Exporter, error) {
				return noopLogExporter{}, nil
			}))
		if err != nil {
			return err
		}
	}

	m.setupProviders(res)
	return nil
}

// ForceFlush exports everything the providers installed by Init have buffered.
func (m *Manager) ForceFlush(ctx context.Context) error {
	var errs []error
	if m.tracerProvider != nil {
		errs = append(errs, m.tracerProvider.ForceFlush(ctx))
	}
	if m.meterProvider != nil {
		errs = append(errs, m.meterProvider.ForceFlush(ctx))
	}
	if m.loggerProvider != nil {
		errs = append(errs, m.loggerProvider.ForceFlush(ctx))
	}
	return errors.Join(errs...)
}

// Shutdown flushes and stops the providers installed by Init.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error
	if m.tracerProvider != nil {
		errs = append(errs, m.tracerProvider.Shutdown(ctx))
	}
	if m.meterProvider != nil {
		errs = append(errs, m.meterProvider.Shutdown(ctx))
	}
	if m.loggerProvider != nil {
		errs = append(errs, m.loggerProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Resource describes the process reporting telemetry, nil until Init.
func (m *Manager) Resource() *resource.Resource {
	return m.resource
}

func (m *Manager) setupResource(ctx context.Context) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithProcessPID(),
		resource.WithProcessRuntimeName(),
		resource.WithProcessRuntimeVersion(),
		resource.WithAttributes(
			semconv.ServiceName(m.serviceName),
			semconv.ServiceVersion(m.serviceVersion),
		),
	)
}

func (m *Manager) setupProviders(res *resource.Resource) {
	otel.SetTextMapPropagator(m.traceTextMap)

	m.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithSampler(m.traceSampler),
		sdktrace.WithBatcher(m.traceExporter),
		sdktrace.WithResource(res))
	otel.SetTracerProvider(m.tracerProvider)

	m.meterProvider = sdkmetrics.NewMeterProvider(
		sdkmetrics.WithReader(m.metricsReader),
		sdkmetrics.WithResource(res),
		sdkmetrics.WithView(m.views...),
	)
	otel.SetMeterProvider(m.meterProvider)

	m.loggerProvider = sdklogs.NewLoggerProvider(
		sdklogs.WithResource(res),
		sdklogs.WithProcessor(sdklogs.NewBatchProcessor(m.traceLogsExporter)),
	)
	global.SetLoggerProvider(m.loggerProvider)

	m.logHandler = otelslog.NewHandler(m.serviceName,
		otelslog.WithSource(true),
		otelslog.WithLoggerProvider(m.loggerProvider),
		otelslog.WithAttributes(res.Attributes()...))
}
