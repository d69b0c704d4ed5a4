package observability

import (
	"context"
	"errors"
	"fmt"

	"inventoryapi/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// SDK is the result of SetupSDK. TracerProvider is never nil.
type SDK struct {
	TracerProvider trace.TracerProvider
	Shutdown       func(context.Context) error
}

// SetupSDK installs the global propagator and, when an OTLP endpoint is
// configured, the log and trace providers. Partial failures are joined into
// the returned error while whatever did start stays usable.
func SetupSDK(ctx context.Context, cfg *config.Config) (*SDK, error) {
	var shutdownFuncs []func(context.Context) error
	var setupErr error

	sdk := &SDK{
		TracerProvider: noop.NewTracerProvider(),
		Shutdown: func(ctx context.Context) error {
			var err error
			for _, fn := range shutdownFuncs {
				err = errors.Join(err, fn(ctx))
			}
			shutdownFuncs = nil
			return err
		},
	}

	// Trace context travels in Kafka headers and inbound HTTP requests
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if cfg.OtelEndpoint == "" {
		return sdk, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return sdk, fmt.Errorf("failed to create resource: %w", err)
	}

	headers := map[string]string{}
	if cfg.OtelAuthHeader != "" {
		headers["Authorization"] = cfg.OtelAuthHeader
	}

	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpoint(cfg.OtelEndpoint),
		otlploghttp.WithURLPath(config.LogsPath),
		otlploghttp.WithHeaders(headers),
	)
	if err != nil {
		setupErr = errors.Join(setupErr, fmt.Errorf("OTLP Log Exporter: %w", err))
	} else {
		loggerProvider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter,
				sdklog.WithExportTimeout(config.ExportTimeout),
				sdklog.WithMaxQueueSize(config.MaxQueueSize),
			)),
			sdklog.WithResource(res),
		)
		global.SetLoggerProvider(loggerProvider)
		shutdownFuncs = append(shutdownFuncs, loggerProvider.Shutdown)
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OtelEndpoint),
		otlptracehttp.WithURLPath(config.TracesPath),
		otlptracehttp.WithHeaders(headers),
	)
	if err != nil {
		setupErr = errors.Join(setupErr, fmt.Errorf("OTLP Trace Exporter: %w", err))
	} else {
		tracerProvider := sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sdktrace.AlwaysSample()),
			sdktrace.WithResource(res),
			sdktrace.WithSpanProcessor(sdktrace.NewBatchSpanProcessor(traceExporter,
				sdktrace.WithExportTimeout(config.ExportTimeout),
				sdktrace.WithMaxQueueSize(config.MaxQueueSize),
			)),
		)
		otel.SetTracerProvider(tracerProvider)
		shutdownFuncs = append(shutdownFuncs, tracerProvider.Shutdown)
		sdk.TracerProvider = tracerProvider
	}

	return sdk, setupErr
}
