// Package analysis aggregates geometry metrics and every data category for a
// polygon into a single report.
package analysis

import (
	"time"

	"github.com/arealens/arealens/internal/climate"
	"github.com/arealens/arealens/internal/elevation"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/landuse"
	"github.com/arealens/arealens/internal/population"
	"github.com/arealens/arealens/internal/sourcechain"
	"github.com/arealens/arealens/internal/weather"
)

// Category names a data category.
type Category string

const (
	CategoryPopulation Category = "population"
	CategoryLandUse    Category = "landUse"
	CategoryClimate    Category = "climate"
	CategoryElevation  Category = "elevation"
	CategoryWeather    Category = "weather"
)

// Categories lists every category in report order.
var Categories = []Category{
	CategoryPopulation,
	CategoryLandUse,
	CategoryClimate,
	CategoryElevation,
	CategoryWeather,
}

// Credentials maps provider names to their opaque tokens.
type Credentials map[string]string

// For returns the credential for a provider, or "" if absent.
func (c Credentials) For(providerName string) string {
	if c == nil {
		return ""
	}
	return c[providerName]
}

// Provenance describes how a category was resolved.
type Provenance struct {
	Source    string                `json:"source"`
	Estimated bool                  `json:"estimated"`
	Attempts  []sourcechain.Attempt `json:"attempts"`
}

// Report is the complete result of analyzing one polygon.
type Report struct {
	Metrics    geometry.Metrics        `json:"metrics"`
	Population *population.Result      `json:"population"`
	LandUse    *landuse.Result         `json:"landUse"`
	Climate    *climate.Result         `json:"climate"`
	Elevation  *elevation.Result       `json:"elevation"`
	Weather    *weather.Result         `json:"weather"`
	Provenance map[Category]Provenance `json:"provenance"`

	GeneratedAt time.Time `json:"generatedAt"`
}

// EstimatedCategories returns the categories resolved by an estimator.
func (r *Report) EstimatedCategories() []Category {
	var out []Category
	for _, c := range Categories {
		if p, ok := r.Provenance[c]; ok && p.Estimated {
			out = append(out, c)
		}
	}
	return out
}

func provenanceOf[T sourcechain.Result](o sourcechain.Outcome[T]) Provenance {
	attempts := o.Attempts
	if attempts == nil {
		attempts = []sourcechain.Attempt{}
	}
	return Provenance{Source: o.Source, Estimated: o.Estimated, Attempts: attempts}
}
