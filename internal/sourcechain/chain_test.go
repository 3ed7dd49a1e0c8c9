package sourcechain_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/arealens/arealens/internal/estimate"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
	"github.com/arealens/arealens/internal/sourcechain"
)

type sample struct {
	Value      int
	DataSource string
}

func (s *sample) SetDataSource(source string) { s.DataSource = source }

func (s *sample) Validate() error {
	if s == nil {
		return provider.ErrEmptyResult
	}
	if s.Value < 0 {
		return provider.ErrMalformed
	}
	return nil
}

func estimator() *sample { return &sample{Value: -1000} }

func ok(name string, value int) sourcechain.Source[*sample] {
	return sourcechain.Source[*sample]{
		Name: name,
		Fetch: func(context.Context, string) (*sample, error) {
			return &sample{Value: value}, nil
		},
	}
}

func failing(name string, err error, calls *atomic.Int32) sourcechain.Source[*sample] {
	return sourcechain.Source[*sample]{
		Name: name,
		Fetch: func(context.Context, string) (*sample, error) {
			if calls != nil {
				calls.Add(1)
			}
			return nil, err
		},
	}
}

func config() sourcechain.Config {
	return sourcechain.Config{
		Category: "test",
		Timeout:  time.Second,
		Logger:   zerolog.Nop(),
	}
}

func TestChain_FirstSuccessWins(t *testing.T) {
	var calls atomic.Int32
	chain := sourcechain.New(config(), estimator,
		failing("a", provider.ErrUnavailable, &calls),
		failing("b", provider.ErrMalformed, &calls),
		ok("c", 3),
		failing("d", provider.ErrUnavailable, &calls),
	)

	out := chain.Run(context.Background())

	assert.Equal(t, 3, out.Value.Value)
	assert.Equal(t, "c", out.Source)
	assert.Equal(t, "c", out.Value.DataSource)
	assert.False(t, out.Estimated)
	assert.Equal(t, int32(2), calls.Load(), "sources after the winner are not called")

	require.Len(t, out.Attempts, 3)
	assert.Equal(t, provider.FailureUnavailable, out.Attempts[0].Failure)
	assert.Equal(t, provider.FailureMalformed, out.Attempts[1].Failure)
	assert.Equal(t, provider.FailureNone, out.Attempts[2].Failure)
	assert.ErrorIs(t, out.Attempts[0].Err(), provider.ErrUnavailable)
}

func TestChain_AllFailUsesEstimator(t *testing.T) {
	chain := sourcechain.New(config(), estimator,
		failing("a", provider.ErrUnavailable, nil),
		failing("b", errors.New("boom"), nil),
		failing("c", provider.ErrMalformed, nil),
	)

	out := chain.Run(context.Background())

	assert.True(t, out.Estimated)
	assert.Equal(t, estimate.Source, out.Source)
	assert.Equal(t, estimate.Source, out.Value.DataSource)
	assert.Equal(t, -1000, out.Value.Value)
	assert.Len(t, out.Attempts, 3)
}

func TestChain_NoSources(t *testing.T) {
	chain := sourcechain.New(config(), estimator)

	out := chain.Run(context.Background())

	assert.True(t, out.Estimated)
	assert.Empty(t, out.Attempts)
	assert.Zero(t, chain.Len())
}

func TestChain_MissingCredentialSkipsWithoutCalling(t *testing.T) {
	var calls atomic.Int32
	keyed := failing("keyed", nil, &calls)
	keyed.RequiresCredential = true

	chain := sourcechain.New(config(), estimator, keyed, ok("open", 7))

	out := chain.Run(context.Background())

	assert.Equal(t, "open", out.Source)
	assert.Zero(t, calls.Load())
	require.Len(t, out.Attempts, 2)
	assert.Equal(t, provider.FailureCredentialMissing, out.Attempts[0].Failure)
	assert.Zero(t, out.Attempts[0].Duration)
}

func TestChain_CredentialIsPassedThrough(t *testing.T) {
	src := sourcechain.Source[*sample]{
		Name:               "keyed",
		RequiresCredential: true,
		Credential:         "s3cret",
		Fetch: func(_ context.Context, credential string) (*sample, error) {
			assert.Equal(t, "s3cret", credential)
			return &sample{Value: 1}, nil
		},
	}

	out := sourcechain.New(config(), estimator, src).Run(context.Background())
	assert.Equal(t, "keyed", out.Source)
}

func TestChain_EmptyOnlySourceEscalatesToEstimator(t *testing.T) {
	chain := sourcechain.New(config(), estimator, failing("only", provider.ErrEmptyResult, nil))

	out := chain.Run(context.Background())

	assert.True(t, out.Estimated)
	assert.Equal(t, provider.FailureEmpty, out.Attempts[0].Failure)
}

func TestChain_NilValueIsEmpty(t *testing.T) {
	chain := sourcechain.New(config(), estimator, failing("nil", nil, nil), ok("next", 1))

	out := chain.Run(context.Background())

	assert.Equal(t, "next", out.Source)
	assert.Equal(t, provider.FailureEmpty, out.Attempts[0].Failure)
}

func TestChain_InvalidValueAdvances(t *testing.T) {
	chain := sourcechain.New(config(), estimator, ok("bad", -5), ok("good", 5))

	out := chain.Run(context.Background())

	assert.Equal(t, "good", out.Source)
	assert.Equal(t, provider.FailureMalformed, out.Attempts[0].Failure)
}

func TestChain_TimeoutAdvances(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	stuck := sourcechain.Source[*sample]{
		Name: "stuck",
		Fetch: func(context.Context, string) (*sample, error) {
			<-release // ignores its context
			return &sample{Value: 1}, nil
		},
	}
	cfg := config()
	cfg.Timeout = 50 * time.Millisecond

	start := time.Now()
	out := sourcechain.New(cfg, estimator, stuck, ok("fast", 2)).Run(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, "fast", out.Source)
	assert.Equal(t, provider.FailureTimeout, out.Attempts[0].Failure)
}

func TestChain_PanicIsMalformed(t *testing.T) {
	panicky := sourcechain.Source[*sample]{
		Name: "panicky",
		Fetch: func(context.Context, string) (*sample, error) {
			panic("unexpected shape")
		},
	}

	out := sourcechain.New(config(), estimator, panicky).Run(context.Background())

	assert.True(t, out.Estimated)
	assert.Equal(t, provider.FailureMalformed, out.Attempts[0].Failure)
	assert.Contains(t, out.Attempts[0].Error, "unexpected shape")
}

func TestChain_CancelledContextSkipsRemainingSources(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32

	first := sourcechain.Source[*sample]{
		Name: "first",
		Fetch: func(context.Context, string) (*sample, error) {
			cancel()
			return nil, provider.ErrUnavailable
		},
	}

	out := sourcechain.New(config(), estimator, first, failing("second", nil, &calls), ok("third", 1)).Run(ctx)

	assert.True(t, out.Estimated)
	assert.Zero(t, calls.Load())
	require.Len(t, out.Attempts, 3)
	assert.Equal(t, provider.FailureCancelled, out.Attempts[0].Failure)
	assert.Equal(t, provider.FailureCancelled, out.Attempts[1].Failure)
	assert.Equal(t, provider.FailureCancelled, out.Attempts[2].Failure)
}

func TestChain_RecordsProviderHealth(t *testing.T) {
	registry := resilience.NewRegistry()
	cfg := config()
	cfg.Registry = registry

	keyed := failing("keyed", nil, nil)
	keyed.RequiresCredential = true

	sourcechain.New(cfg, estimator, keyed, failing("down", provider.ErrUnavailable, nil), ok("up", 1)).
		Run(context.Background())

	assert.Nil(t, registry.GetHealth("keyed"), "missing credentials are not a health signal")

	down := registry.GetHealth("down")
	require.NotNil(t, down)
	assert.Equal(t, uint64(1), down.Failures)
	assert.True(t, down.IsDegraded())

	up := registry.GetHealth("up")
	require.NotNil(t, up)
	assert.Equal(t, uint64(1), up.Successes)
	assert.True(t, up.IsHealthy())
}

func TestChain_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	cfg := config()
	cfg.Category = "climate"
	cfg.Tracer = tp.Tracer("test")

	sourcechain.New(cfg, estimator, failing("a", provider.ErrUnavailable, nil), ok("b", 1)).
		Run(context.Background())

	spans := sr.Ended()
	require.Len(t, spans, 3)
	assert.Equal(t, "sourcechain.attempt", spans[0].Name())
	assert.Equal(t, "sourcechain.attempt", spans[1].Name())
	assert.Equal(t, "sourcechain.climate", spans[2].Name())
	assert.Equal(t, spans[2].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestChain_Metrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	metrics, err := sourcechain.NewMetricsWithMeter(mp.Meter("test"))
	require.NoError(t, err)

	cfg := config()
	cfg.Metrics = metrics

	sourcechain.New(cfg, estimator, failing("a", provider.ErrUnavailable, nil), failing("b", provider.ErrMalformed, nil)).
		Run(context.Background())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), totals["sourcechain.attempt.total"])
	assert.Equal(t, int64(1), totals["sourcechain.fallback.total"])
}

func TestChain_NilMetricsIsSafe(t *testing.T) {
	var m *sourcechain.Metrics
	cfg := config()
	cfg.Metrics = m

	out := sourcechain.New(cfg, estimator, ok("a", 1)).Run(context.Background())
	assert.Equal(t, "a", out.Source)
}
