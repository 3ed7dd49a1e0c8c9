package sourcechain

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/arealens/arealens/internal/provider"
)

const meterName = "github.com/arealens/arealens/internal/sourcechain"

// Metrics holds the OpenTelemetry instruments for chain execution.
// A nil *Metrics records nothing.
type Metrics struct {
	attemptDuration metric.Float64Histogram
	attemptTotal    metric.Int64Counter
	fallbackTotal   metric.Int64Counter
}

// NewMetrics creates chain metrics on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(meterName))
}

// NewMetricsWithMeter creates chain metrics on the given meter.
func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	attemptDuration, err := meter.Float64Histogram(
		"sourcechain.attempt.duration",
		metric.WithDescription("Duration of provider attempts in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	attemptTotal, err := meter.Int64Counter(
		"sourcechain.attempt.total",
		metric.WithDescription("Total number of provider attempts by outcome"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	fallbackTotal, err := meter.Int64Counter(
		"sourcechain.fallback.total",
		metric.WithDescription("Number of chains resolved by the geographic estimator"),
		metric.WithUnit("{fallback}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		attemptDuration: attemptDuration,
		attemptTotal:    attemptTotal,
		fallbackTotal:   fallbackTotal,
	}, nil
}

func (m *Metrics) recordAttempt(ctx context.Context, category string, a Attempt) {
	if m == nil {
		return
	}

	outcome := string(a.Failure)
	if a.Failure == provider.FailureNone {
		outcome = "success"
	}
	attrs := metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("provider.name", a.Source),
		attribute.String("outcome", outcome),
	)

	// Use a context without cancellation so cancelled requests are still counted.
	ctx = context.WithoutCancel(ctx)
	m.attemptTotal.Add(ctx, 1, attrs)
	m.attemptDuration.Record(ctx, a.Duration.Seconds(), attrs)
}

func (m *Metrics) recordFallback(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.fallbackTotal.Add(context.WithoutCancel(ctx), 1, metric.WithAttributes(attribute.String("category", category)))
}
