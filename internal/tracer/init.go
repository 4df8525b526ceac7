package tracer

import (
	"context"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const ServiceName = "chat-assistant-backend"

// Settings controls exporter setup. Enabled=false installs nothing and
// returns a no-op shutdown.
type Settings struct {
	Enabled     bool
	Endpoint    string // host:port of an OTLP/HTTP collector
	Environment string
}

// SettingsFromEnv reads OTEL_ENABLED and OTEL_EXPORTER_OTLP_ENDPOINT.
func SettingsFromEnv(environment string) Settings {
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4318"
	}
	return Settings{
		Enabled:     os.Getenv("OTEL_ENABLED") == "true",
		Endpoint:    endpoint,
		Environment: environment,
	}
}

// InitTracer installs a global tracer provider exporting chat request spans
// over OTLP HTTP. The returned function flushes and stops the exporter.
func InitTracer(ctx context.Context, s Settings) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !s.Enabled {
		log.Println("OpenTelemetry tracing is disabled (set OTEL_ENABLED=true to enable)")
		return noop
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(s.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("Warning: Failed to create OTLP exporter: %v (tracing disabled)", err)
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
			semconv.DeploymentEnvironmentKey.String(s.Environment),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	log.Printf("OpenTelemetry tracer initialized (endpoint: %s)", s.Endpoint)

	return tp.Shutdown
}
