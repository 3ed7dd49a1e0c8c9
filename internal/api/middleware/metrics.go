package middleware

import (
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the HTTP server instruments.
type Metrics struct {
	requestDuration  metric.Float64Histogram
	requestTotal     metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter
	responseSize     metric.Int64Histogram
}

// NewMetrics creates HTTP instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithMeter(otel.Meter(instrumentationName))
}

// NewMetricsWithMeter creates HTTP instruments on the given meter.
func NewMetricsWithMeter(meter metric.Meter) (*Metrics, error) {
	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Total number of HTTP server requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of HTTP requests currently being processed"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	responseSize, err := meter.Int64Histogram(
		"http.server.response.body.size",
		metric.WithDescription("Size of HTTP server response bodies in bytes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		requestsInFlight: requestsInFlight,
		responseSize:     responseSize,
	}, nil
}

// Middleware records duration, count and size per method, route and status.
func (m *Metrics) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			inFlight := metric.WithAttributes(attribute.String("http.request.method", r.Method))
			m.requestsInFlight.Add(ctx, 1, inFlight)
			defer m.requestsInFlight.Add(ctx, -1, inFlight)

			rec := recordStatus(w)
			next.ServeHTTP(rec, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			attrs := metric.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.response.status_code", strconv.Itoa(rec.status)),
				attribute.Bool("error", rec.status >= http.StatusBadRequest),
			)

			m.requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
			m.requestTotal.Add(ctx, 1, attrs)
			m.responseSize.Record(ctx, rec.written, attrs)
		})
	}
}
