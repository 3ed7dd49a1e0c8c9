// Package sourcechain runs an ordered list of data sources for one category,
// falling through failures until one produces a valid result and falling back
// to a synthetic estimate when every source has failed. A chain never fails.
package sourcechain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/arealens/arealens/internal/estimate"
	"github.com/arealens/arealens/internal/provider"
	"github.com/arealens/arealens/internal/provider/resilience"
)

const tracerName = "github.com/arealens/arealens/internal/sourcechain"

// DefaultTimeout bounds a single source attempt.
const DefaultTimeout = 10 * time.Second

// Result is implemented by every category payload.
type Result interface {
	// SetDataSource records the provenance of the value.
	SetDataSource(source string)

	// Validate reports whether a fetched value is usable.
	Validate() error
}

// Source is one provider call in a chain.
type Source[T Result] struct {
	// Name is the provider name used for provenance, logs and health.
	Name string

	// RequiresCredential skips the source without calling Fetch when
	// Credential is empty.
	RequiresCredential bool

	// Credential is passed to Fetch.
	Credential string

	// Fetch performs the provider call. It should honour ctx.
	Fetch func(ctx context.Context, credential string) (T, error)
}

// Estimator produces the terminal fallback value. It must not fail.
type Estimator[T Result] func() T

// Config holds configuration for a chain.
type Config struct {
	// Category names the data category in logs, spans and metrics.
	Category string

	// Timeout bounds each attempt (default: DefaultTimeout).
	Timeout time.Duration

	// Logger for chain operations.
	Logger zerolog.Logger

	// Registry receives attempt outcomes for provider health (optional).
	Registry *resilience.Registry

	// Metrics records attempt and fallback counters (optional).
	Metrics *Metrics

	// Tracer creates chain and attempt spans (default: global tracer).
	Tracer trace.Tracer
}

// Attempt records how one source fared.
type Attempt struct {
	Source   string           `json:"source"`
	Failure  provider.Failure `json:"failure,omitempty"`
	Error    string           `json:"error,omitempty"`
	Duration time.Duration    `json:"durationNs"`

	err error
}

// Err returns the error of a failed attempt.
func (a Attempt) Err() error {
	return a.err
}

// Outcome is the resolved value of a chain.
type Outcome[T Result] struct {
	Value     T
	Source    string
	Estimated bool
	Attempts  []Attempt
}

// Chain is an ordered list of sources with a terminal estimator.
type Chain[T Result] struct {
	cfg       Config
	estimator Estimator[T]
	sources   []Source[T]
}

// New creates a chain. Sources are tried in the order given; a chain without
// sources always returns the estimate.
func New[T Result](cfg Config, estimator Estimator[T], sources ...Source[T]) *Chain[T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(tracerName)
	}
	return &Chain[T]{cfg: cfg, estimator: estimator, sources: sources}
}

// Len returns the number of sources.
func (c *Chain[T]) Len() int {
	return len(c.sources)
}

// Run tries each source strictly in order and returns the first valid value.
// When all sources fail, or ctx is cancelled, the estimator result is returned.
func (c *Chain[T]) Run(ctx context.Context) Outcome[T] {
	ctx, span := c.cfg.Tracer.Start(ctx, "sourcechain."+c.cfg.Category,
		trace.WithAttributes(
			attribute.String("category", c.cfg.Category),
			attribute.Int("sources", len(c.sources)),
		),
	)
	defer span.End()

	attempts := make([]Attempt, 0, len(c.sources))
	for i, src := range c.sources {
		if err := ctx.Err(); err != nil {
			for _, skipped := range c.sources[i:] {
				attempts = append(attempts, Attempt{
					Source:  skipped.Name,
					Failure: provider.FailureCancelled,
					Error:   err.Error(),
					err:     err,
				})
			}
			break
		}

		value, attempt := c.attempt(ctx, src)
		attempts = append(attempts, attempt)
		if attempt.Failure == provider.FailureNone {
			value.SetDataSource(src.Name)
			span.SetAttributes(attribute.String("source", src.Name), attribute.Bool("estimated", false))
			return Outcome[T]{Value: value, Source: src.Name, Attempts: attempts}
		}
	}

	value := c.estimator()
	value.SetDataSource(estimate.Source)

	c.cfg.Metrics.recordFallback(ctx, c.cfg.Category)
	c.cfg.Logger.Info().
		Str("category", c.cfg.Category).
		Int("attempts", len(attempts)).
		Msg("all sources failed, using geographic estimate")
	span.SetAttributes(attribute.String("source", estimate.Source), attribute.Bool("estimated", true))

	return Outcome[T]{Value: value, Source: estimate.Source, Estimated: true, Attempts: attempts}
}

// attempt runs a single source under the per-attempt timeout.
func (c *Chain[T]) attempt(ctx context.Context, src Source[T]) (T, Attempt) {
	var zero T

	if src.RequiresCredential && src.Credential == "" {
		a := Attempt{
			Source:  src.Name,
			Failure: provider.FailureCredentialMissing,
			Error:   provider.ErrCredentialMissing.Error(),
			err:     provider.ErrCredentialMissing,
		}
		c.finish(ctx, a)
		return zero, a
	}

	ctx, span := c.cfg.Tracer.Start(ctx, "sourcechain.attempt",
		trace.WithAttributes(
			attribute.String("category", c.cfg.Category),
			attribute.String("provider.name", src.Name),
		),
	)
	defer span.End()

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	value, err := fetch(attemptCtx, src)
	if err == nil {
		err = value.Validate()
	}
	a := Attempt{Source: src.Name, Duration: time.Since(start)}

	if err != nil {
		a.err = err
		a.Error = err.Error()
		a.Failure = provider.Classify(err)
		switch {
		case ctx.Err() != nil:
			a.Failure = provider.FailureCancelled
		case errors.Is(attemptCtx.Err(), context.DeadlineExceeded):
			a.Failure = provider.FailureTimeout
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, string(a.Failure))
	}
	span.SetAttributes(attribute.String("failure", string(a.Failure)))

	c.finish(ctx, a)
	if a.Failure != provider.FailureNone {
		return zero, a
	}
	return value, a
}

// finish logs the attempt and reports it to metrics and the registry.
func (c *Chain[T]) finish(ctx context.Context, a Attempt) {
	c.cfg.Metrics.recordAttempt(ctx, c.cfg.Category, a)

	if a.Failure == provider.FailureNone {
		c.cfg.Logger.Debug().
			Str("category", c.cfg.Category).
			Str("provider", a.Source).
			Dur("duration", a.Duration).
			Msg("source succeeded")
		if c.cfg.Registry != nil {
			c.cfg.Registry.RecordSuccess(a.Source)
		}
		return
	}

	c.cfg.Logger.Warn().
		Err(a.err).
		Str("category", c.cfg.Category).
		Str("provider", a.Source).
		Str("failure", string(a.Failure)).
		Dur("duration", a.Duration).
		Msg("source failed")

	// Missing credentials and caller cancellation say nothing about provider health.
	if c.cfg.Registry != nil && a.Failure != provider.FailureCredentialMissing && a.Failure != provider.FailureCancelled {
		c.cfg.Registry.RecordFailure(a.Source, a.err)
	}
}

// fetch calls the source in its own goroutine so that a provider ignoring its
// context cannot hold the chain past the deadline. Panics become ErrMalformed.
func fetch[T Result](ctx context.Context, src Source[T]) (T, error) {
	type reply struct {
		value T
		err   error
	}
	done := make(chan reply, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				done <- reply{value: zero, err: fmt.Errorf("%w: provider panicked: %v", provider.ErrMalformed, r)}
			}
		}()
		v, err := src.Fetch(ctx, src.Credential)
		done <- reply{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		select {
		case r := <-done:
			return r.value, r.err
		default:
		}
		var zero T
		return zero, ctx.Err()
	}
}
