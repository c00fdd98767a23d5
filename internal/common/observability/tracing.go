package observability

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// TracingOptions selects the span exporter. Endpoint is an OTLP/gRPC
// collector address; when empty spans are written to Writer as JSON.
type TracingOptions struct {
	Enabled  bool
	Endpoint string
	Writer   io.Writer
}

// Tracing holds the installed tracer provider.
type Tracing struct {
	provider *sdktrace.TracerProvider
}

// SetupTracing installs a global tracer provider when enabled. When disabled
// the global no-op provider stays in place.
func SetupTracing(ctx context.Context, serviceName string, opts TracingOptions) (*Tracing, error) {
	if !opts.Enabled {
		return &Tracing{}, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(attribute.String("service.name", serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	var exp sdktrace.SpanExporter
	if opts.Endpoint != "" {
		exp, err = otlptracegrpc.New(ctx,
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("otel otlp exporter: %w", err)
		}
	} else {
		stdoutOpts := []stdouttrace.Option{}
		if opts.Writer != nil {
			stdoutOpts = append(stdoutOpts, stdouttrace.WithWriter(opts.Writer))
		}
		exp, err = stdouttrace.New(stdoutOpts...)
		if err != nil {
			return nil, fmt.Errorf("otel stdout exporter: %w", err)
		}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return &Tracing{provider: tp}, nil
}

// Shutdown flushes pending spans.
func (t *Tracing) Shutdown(ctx context.Context) error {
	if t == nil || t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}
