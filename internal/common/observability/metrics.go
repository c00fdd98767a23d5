package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records request level OpenTelemetry metrics. A zero value is
// usable and records nothing.
type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
}

// New wires an OpenTelemetry meter to the default Prometheus registry so the
// instruments show up on /metrics.
func New(serviceName string, log Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{
			"error": err.Error(),
		})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	requestCounter, _ := meter.Int64Counter(
		"requests.processed",
		otelmetric.WithDescription("Number of generation requests processed"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"requests.duration",
		otelmetric.WithDescription("Generation request duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}
}

func (o *Observability) RecordRequest(ctx context.Context, endpoint, status string) {
	if o == nil || o.requestCounter == nil {
		return
	}
	o.requestCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordDuration(ctx context.Context, endpoint string, duration time.Duration, status string) {
	if o == nil || o.requestDuration == nil {
		return
	}
	o.requestDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
