// Package climate resolves a twelve month temperature and precipitation
// profile for the centre of a polygon.
package climate

import (
	"context"
	"fmt"
	"math"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
)

// MonthsPerYear is the length of every climate series.
const MonthsPerYear = 12

// MonthLabels are the short month names in calendar order.
var MonthLabels = [MonthsPerYear]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// Result is a monthly climate profile.
type Result struct {
	Months          []string  `json:"months"`
	TemperaturesC   []float64 `json:"temperaturesC"`
	PrecipitationMm []float64 `json:"precipitationMm"`
	DataSource      string    `json:"dataSource"`
}

// SetDataSource records which provider or estimator produced the result.
func (r *Result) SetDataSource(source string) {
	r.DataSource = source
}

// Validate checks that all series cover twelve months and that
// precipitation is non-negative.
func (r *Result) Validate() error {
	if r == nil {
		return provider.ErrEmptyResult
	}
	if len(r.Months) != MonthsPerYear || len(r.TemperaturesC) != MonthsPerYear || len(r.PrecipitationMm) != MonthsPerYear {
		return fmt.Errorf("%w: expected %d months, got %d/%d/%d", provider.ErrMalformed,
			MonthsPerYear, len(r.Months), len(r.TemperaturesC), len(r.PrecipitationMm))
	}
	for i := range MonthsPerYear {
		if math.IsNaN(r.TemperaturesC[i]) || math.IsInf(r.TemperaturesC[i], 0) {
			return fmt.Errorf("%w: invalid temperature for %s", provider.ErrMalformed, r.Months[i])
		}
		if math.IsNaN(r.PrecipitationMm[i]) || r.PrecipitationMm[i] < 0 {
			return fmt.Errorf("%w: invalid precipitation for %s", provider.ErrMalformed, r.Months[i])
		}
	}
	return nil
}

// FromMonthly builds a result from calendar-ordered monthly values,
// rounded to one decimal.
func FromMonthly(temperatures, precipitation [MonthsPerYear]float64) *Result {
	r := &Result{
		Months:          MonthLabels[:],
		TemperaturesC:   make([]float64, MonthsPerYear),
		PrecipitationMm: make([]float64, MonthsPerYear),
	}
	for i := range MonthsPerYear {
		r.TemperaturesC[i] = math.Round(temperatures[i]*10) / 10
		r.PrecipitationMm[i] = math.Round(precipitation[i]*10) / 10
	}
	return r
}

// Provider defines the interface for climate data providers.
type Provider interface {
	// GetClimate returns the monthly climate at a point.
	GetClimate(ctx context.Context, point geometry.Point, credential string) (*Result, error)

	// RequiresCredential reports whether calls need a credential.
	RequiresCredential() bool

	// Name returns the provider name for logging and provenance.
	Name() string
}
