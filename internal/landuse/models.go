// Package landuse resolves how the surface of a polygon is used.
package landuse

import (
	"context"
	"fmt"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
)

// Result holds land-use shares in whole percent.
type Result struct {
	Urban       int    `json:"urban"`
	Agriculture int    `json:"agriculture"`
	Forest      int    `json:"forest"`
	Water       int    `json:"water"`
	Other       int    `json:"other"`
	DataSource  string `json:"dataSource"`
}

// SetDataSource records which provider or estimator produced the result.
func (r *Result) SetDataSource(source string) {
	r.DataSource = source
}

// Total returns the sum of all shares.
func (r *Result) Total() int {
	return r.Urban + r.Agriculture + r.Forest + r.Water + r.Other
}

// Validate checks that every share is a percentage.
func (r *Result) Validate() error {
	if r == nil {
		return provider.ErrEmptyResult
	}
	shares := []struct {
		name  string
		value int
	}{
		{"urban", r.Urban},
		{"agriculture", r.Agriculture},
		{"forest", r.Forest},
		{"water", r.Water},
		{"other", r.Other},
	}
	for _, s := range shares {
		if s.value < 0 || s.value > 100 {
			return fmt.Errorf("%w: %s share %d out of range", provider.ErrMalformed, s.name, s.value)
		}
	}
	return nil
}

// Provider defines the interface for land-use data providers.
type Provider interface {
	// GetLandUse returns land-use shares inside the polygon.
	GetLandUse(ctx context.Context, polygon geometry.Polygon, credential string) (*Result, error)

	// RequiresCredential reports whether calls need a credential.
	RequiresCredential() bool

	// Name returns the provider name for logging and provenance.
	Name() string
}
