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

type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
	callbackCounter otelmetric.Int64Counter
}

// New registers an OpenTelemetry meter provider backed by the Prometheus
// exporter, so otel instruments appear on the same /metrics endpoint. A
// failed exporter yields a no-op instance.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	requestCounter, _ := meter.Int64Counter(
		"relay.requests",
		otelmetric.WithDescription("Number of relay requests processed"),
	)

	requestDuration, _ := meter.Float64Histogram(
		"relay.duration",
		otelmetric.WithDescription("Relay request processing duration"),
		otelmetric.WithUnit("ms"),
	)

	callbackCounter, _ := meter.Int64Counter(
		"relay.callbacks",
		otelmetric.WithDescription("Agent callbacks dispatched"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
		callbackCounter: callbackCounter,
	}, nil
}

// RecordRequest counts one handled request and its latency.
func (o *Observability) RecordRequest(ctx context.Context, endpoint, outcome string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("outcome", outcome),
	)
	if o.requestCounter != nil {
		o.requestCounter.Add(ctx, 1, attrs)
	}
	if o.requestDuration != nil {
		o.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

// RecordCallback counts one dispatched callback status.
func (o *Observability) RecordCallback(ctx context.Context, status string) {
	if o == nil || o.callbackCounter == nil {
		return
	}
	o.callbackCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("status", status),
	))
}

func (o *Observability) Shutdown() {
	if o != nil && o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = o.meterProvider.Shutdown(ctx)
	}
}
