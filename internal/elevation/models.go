// Package elevation resolves the ground elevation at the centre of a polygon.
package elevation

import (
	"context"
	"fmt"
	"math"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
)

// UnitMeters is the only unit produced.
const UnitMeters = "m"

// Result is the elevation at the polygon centroid.
type Result struct {
	CenterElevationMeters *float64 `json:"centerElevationMeters"`
	Unit                  string   `json:"unit"`
	DataSource            string   `json:"dataSource"`
}

// Meters returns a result for the given elevation.
func Meters(v float64) *Result {
	return &Result{CenterElevationMeters: &v, Unit: UnitMeters}
}

// SetDataSource records which provider or estimator produced the result.
func (r *Result) SetDataSource(source string) {
	r.DataSource = source
}

// Validate rejects results without a usable elevation.
func (r *Result) Validate() error {
	if r == nil || r.CenterElevationMeters == nil {
		return provider.ErrEmptyResult
	}
	if v := *r.CenterElevationMeters; math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: elevation %v", provider.ErrMalformed, v)
	}
	return nil
}

// Provider defines the interface for elevation data providers.
type Provider interface {
	// GetElevation returns the elevation at a point.
	GetElevation(ctx context.Context, point geometry.Point, credential string) (*Result, error)

	// RequiresCredential reports whether calls need a credential.
	RequiresCredential() bool

	// Name returns the provider name for logging and provenance.
	Name() string
}
