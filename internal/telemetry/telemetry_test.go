package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/arealens/arealens/internal/telemetry"
)

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	provider, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "arealens-test",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		OTLPEndpoint:   "localhost:4317",
		Enabled:        false,
	})

	require.NoError(t, err)
	require.NotNil(t, provider)
	assert.NotNil(t, provider.Tracer)
	assert.NotNil(t, provider.Meter)
	assert.Nil(t, provider.TracerProvider)
	assert.Nil(t, provider.MeterProvider)
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestProvider_Shutdown_NilProviders(t *testing.T) {
	provider := &telemetry.Provider{}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestProvider_Shutdown_TracerProvider(t *testing.T) {
	provider := &telemetry.Provider{TracerProvider: sdktrace.NewTracerProvider()}
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  string
	}{
		{name: "zero samples everything", ratio: 0, want: "AlwaysOnSampler"},
		{name: "one samples everything", ratio: 1, want: "AlwaysOnSampler"},
		{name: "fraction", ratio: 0.25, want: "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, telemetry.Sampler(tt.ratio).Description(), tt.want)
		})
	}
}
