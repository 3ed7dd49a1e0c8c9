// Package population resolves how many people live inside a polygon.
package population

import (
	"context"
	"fmt"
	"math"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
)

// Result is the population of an area.
type Result struct {
	Population    int64   `json:"population"`
	DensityPerKm2 float64 `json:"densityPerKm2"`
	AreaKm2       float64 `json:"areaKm2"`
	DataSource    string  `json:"dataSource"`
}

// SetDataSource records which provider or estimator produced the result.
func (r *Result) SetDataSource(source string) {
	r.DataSource = source
}

// Validate rejects payloads that cannot be a population count.
func (r *Result) Validate() error {
	if r == nil {
		return provider.ErrEmptyResult
	}
	if r.Population < 0 {
		return fmt.Errorf("%w: negative population %d", provider.ErrMalformed, r.Population)
	}
	if math.IsNaN(r.DensityPerKm2) || math.IsInf(r.DensityPerKm2, 0) || r.DensityPerKm2 < 0 {
		return fmt.Errorf("%w: invalid density %v", provider.ErrMalformed, r.DensityPerKm2)
	}
	return nil
}

// Provider defines the interface for population data providers.
type Provider interface {
	// GetPopulation returns the population inside the polygon.
	GetPopulation(ctx context.Context, polygon geometry.Polygon, credential string) (*Result, error)

	// RequiresCredential reports whether calls need a credential.
	RequiresCredential() bool

	// Name returns the provider name for logging and provenance.
	Name() string
}

// FromDensity builds a result for an area with a uniform density.
func FromDensity(areaKm2, density float64) *Result {
	return &Result{
		Population:    int64(math.Round(areaKm2 * density)),
		DensityPerKm2: density,
		AreaKm2:       areaKm2,
	}
}

// FromCount builds a result from an absolute head count, deriving the density.
func FromCount(areaKm2 float64, count float64) *Result {
	r := &Result{
		Population: int64(math.Round(count)),
		AreaKm2:    areaKm2,
	}
	if areaKm2 > 0 {
		r.DensityPerKm2 = count / areaKm2
	}
	return r
}
