// Package estimate provides the random source and provenance conventions shared
// by the geography-based estimators in each data category package.
//
// Estimators never read global randomness: every draw goes through a Rand so
// tests can pin the sequence and concurrent requests never share a stream.
package estimate

import (
	"math"
	"math/rand/v2"
	"sync"
)

// Source is the provenance tag carried by every estimator result.
const Source = "geographic-estimate"

// Rand is the random source consumed by estimators. Float64 returns a value in [0, 1).
type Rand interface {
	Float64() float64
}

// NewRand returns an independently seeded source. Call it once per estimator
// invocation; the returned source is not safe for concurrent use.
func NewRand() Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // synthetic data, not security sensitive
}

// NewSeeded returns a reproducible source for the given seed.
func NewSeeded(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data, not security sensitive
}

// Between draws a float uniformly from [lo, hi).
func Between(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// IntBetween draws an integer uniformly from [lo, hi].
func IntBetween(r Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	n := int(math.Floor(r.Float64() * float64(hi-lo+1)))
	if n > hi-lo {
		n = hi - lo
	}
	return lo + n
}

// Noise draws a float uniformly from [-spread, spread).
func Noise(r Rand, spread float64) float64 {
	return Between(r, -spread, spread)
}

// Round rounds to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Sequence is a Rand that replays fixed values in order, wrapping around.
// It is meant for tests that need to pin estimator output.
type Sequence struct {
	mu     sync.Mutex
	values []float64
	next   int
}

// NewSequence returns a Sequence over the given values. With no values it
// always returns 0.5.
func NewSequence(values ...float64) *Sequence {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &Sequence{values: values}
}

// Float64 returns the next value of the sequence.
func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}
