// Package resilience wraps outbound provider HTTP calls with circuit breakers,
// bounded retries and health bookkeeping so that a dead data source fails fast
// and the source chain can move on to the next one.
package resilience

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies the breaker in logs and the registry.
	Name string

	// MaxRequests is the number of probe requests allowed while half-open.
	// Default: 1
	MaxRequests uint32

	// Interval is the cyclic period for clearing counts while closed.
	// Default: 0 (never cleared)
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	// Default: 30 seconds
	Timeout time.Duration

	// ReadyToTrip decides when to open the breaker.
	// If nil, DefaultReadyToTrip is used.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange is called whenever the breaker changes state.
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultCircuitBreakerConfig returns the breaker settings used for data providers.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     30 * time.Second,
		ReadyToTrip: DefaultReadyToTrip,
	}
}

// DefaultReadyToTrip opens the breaker after at least 5 requests with a
// failure rate of 50% or more.
func DefaultReadyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests == 0 {
		return false
	}
	failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
	return counts.Requests >= 5 && failureRatio >= 0.5
}

// LogStateChanges returns an OnStateChange hook that logs transitions.
func LogStateChanges(logger zerolog.Logger) func(name string, from, to gobreaker.State) {
	return func(name string, from, to gobreaker.State) {
		event := logger.Info()
		if to == gobreaker.StateOpen {
			event = logger.Warn()
		}
		event.
			Str("provider", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("provider circuit breaker state changed")
	}
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
func NewCircuitBreaker[T any](cfg CircuitBreakerConfig) *gobreaker.CircuitBreaker[T] {
	readyToTrip := cfg.ReadyToTrip
	if readyToTrip == nil {
		readyToTrip = DefaultReadyToTrip
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: readyToTrip,
	}
	if cfg.OnStateChange != nil {
		settings.OnStateChange = cfg.OnStateChange
	}

	return gobreaker.NewCircuitBreaker[T](settings)
}
