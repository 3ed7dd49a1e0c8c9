// Package weather resolves current conditions at the centre of a polygon.
package weather

import (
	"context"
	"fmt"
	"math"

	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/internal/provider"
)

// Result represents current weather at a point.
type Result struct {
	TemperatureC    float64   `json:"temperatureC"`
	HumidityPercent float64   `json:"humidityPercent"`
	WindSpeedMs     float64   `json:"windSpeedMs"`
	PressureHpa     float64   `json:"pressureHpa"`
	CloudsPercent   float64   `json:"cloudsPercent"`
	Description     string    `json:"description"`
	Condition       Condition `json:"condition"`
	DataSource      string    `json:"dataSource"`
}

// SetDataSource records which provider or estimator produced the result.
func (r *Result) SetDataSource(source string) {
	r.DataSource = source
}

// Validate rejects physically impossible readings.
func (r *Result) Validate() error {
	if r == nil {
		return provider.ErrEmptyResult
	}
	for _, v := range []float64{r.TemperatureC, r.HumidityPercent, r.WindSpeedMs, r.PressureHpa, r.CloudsPercent} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite reading", provider.ErrMalformed)
		}
	}
	if r.HumidityPercent < 0 || r.HumidityPercent > 100 || r.CloudsPercent < 0 || r.CloudsPercent > 100 {
		return fmt.Errorf("%w: percentage out of range", provider.ErrMalformed)
	}
	if r.WindSpeedMs < 0 || r.PressureHpa <= 0 {
		return fmt.Errorf("%w: wind %v pressure %v", provider.ErrMalformed, r.WindSpeedMs, r.PressureHpa)
	}
	return nil
}

// Condition represents the general weather condition.
type Condition string

const (
	ConditionClear        Condition = "CLEAR"
	ConditionClouds       Condition = "CLOUDS"
	ConditionRain         Condition = "RAIN"
	ConditionDrizzle      Condition = "DRIZZLE"
	ConditionThunderstorm Condition = "THUNDERSTORM"
	ConditionSnow         Condition = "SNOW"
	ConditionMist         Condition = "MIST"
	ConditionFog          Condition = "FOG"
	ConditionHaze         Condition = "HAZE"
	ConditionUnknown      Condition = "UNKNOWN"
)

// DescribeClouds returns the condition and wording for a cloud cover percentage.
func DescribeClouds(cloudsPercent float64) (Condition, string) {
	switch {
	case cloudsPercent < 12:
		return ConditionClear, "clear sky"
	case cloudsPercent < 37:
		return ConditionClouds, "few clouds"
	case cloudsPercent < 62:
		return ConditionClouds, "scattered clouds"
	case cloudsPercent < 87:
		return ConditionClouds, "broken clouds"
	default:
		return ConditionClouds, "overcast clouds"
	}
}

// Provider defines the interface for weather data providers.
type Provider interface {
	// GetCurrentWeather fetches current weather at a point.
	GetCurrentWeather(ctx context.Context, point geometry.Point, credential string) (*Result, error)

	// RequiresCredential reports whether calls need a credential.
	RequiresCredential() bool

	// Name returns the provider name for logging and provenance.
	Name() string
}
