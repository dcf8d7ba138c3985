package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/janhq/relay-api/internal/config"
)

const (
	tracerName           = "relay-api"
	metricExportInterval = 30 * time.Second
)

// Shutdown flushes and releases the telemetry providers.
type Shutdown func(ctx context.Context) error

// Tracer returns the tracer used for outbound webhook spans.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// Setup installs the global tracer and meter providers and the W3C
// propagator. Exporters are attached only when OTEL_ENABLED is set and an
// endpoint is configured; otherwise spans are still created so that trace
// ids propagate to the webhook.
func Setup(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Shutdown, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.DeploymentEnvironment(cfg.Environment),
			attribute.Bool("relay.chat_webhook_configured", cfg.ChatConfigured()),
			attribute.String("relay.audio_store", cfg.AudioStoreBackend),
		),
	)
	if err != nil {
		return nil, err
	}

	traceOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(cfg.TraceSampleRatio)),
	}
	metricOpts := []sdkmetric.Option{sdkmetric.WithResource(res)}

	if cfg.EnableTracing && cfg.OTLPEndpoint != "" {
		spanExporter, metricReader, err := newExporters(ctx, cfg.OTLPEndpoint)
		if err != nil {
			return nil, err
		}
		traceOpts = append(traceOpts, sdktrace.WithBatcher(spanExporter))
		metricOpts = append(metricOpts, sdkmetric.WithReader(metricReader))
		log.Info().
			Str("endpoint", cfg.OTLPEndpoint).
			Float64("sample_ratio", cfg.TraceSampleRatio).
			Msg("OTLP export enabled")
	} else {
		log.Info().Msg("OTLP export disabled")
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)
	meterProvider := sdkmetric.NewMeterProvider(metricOpts...)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return func(ctx context.Context) error {
		return errors.Join(
			meterProvider.Shutdown(ctx),
			tracerProvider.Shutdown(ctx),
		)
	}, nil
}

func newExporters(ctx context.Context, rawEndpoint string) (sdktrace.SpanExporter, sdkmetric.Reader, error) {
	endpoint, insecure := normalizeEndpoint(rawEndpoint)

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	spanExporter, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, nil, err
	}
	metricExporter, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return nil, nil, err
	}
	return spanExporter, sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(metricExportInterval)), nil
}

// sampler honours the parent decision so that a workflow trace started
// upstream of the proxy is never cut in half.
func sampler(ratio float64) sdktrace.Sampler {
	if ratio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
}

// normalizeEndpoint strips the scheme; plain http means an insecure exporter.
func normalizeEndpoint(raw string) (endpoint string, insecure bool) {
	switch {
	case strings.HasPrefix(raw, "https://"):
		return strings.TrimPrefix(raw, "https://"), false
	case strings.HasPrefix(raw, "http://"):
		return strings.TrimPrefix(raw, "http://"), true
	default:
		return raw, true
	}
}
