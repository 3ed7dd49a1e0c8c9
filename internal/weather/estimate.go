package weather

import (
	"math"

	"github.com/arealens/arealens/internal/estimate"
	"github.com/arealens/arealens/internal/geography"
	"github.com/arealens/arealens/internal/geometry"
)

// Estimator ranges. The seasonal offset reflects a fixed northern-summer
// reference date.
const (
	equatorTemperature = 25.0
	lapsePerDegreeLat  = 0.5
	temperatureNoise   = 5.0
	seasonalOffset     = 3.0
)

// Estimate synthesizes plausible current conditions for the latitude.
func Estimate(p geometry.Point, r estimate.Rand) *Result {
	season := seasonalOffset
	if !geography.Northern(p.Lat) {
		season = -seasonalOffset
	}

	temp := equatorTemperature - lapsePerDegreeLat*math.Abs(p.Lat) +
		estimate.Noise(r, temperatureNoise) + season

	clouds := float64(estimate.IntBetween(r, 0, 100))
	condition, description := DescribeClouds(clouds)

	return &Result{
		TemperatureC:    estimate.Round(temp, 1),
		HumidityPercent: float64(estimate.IntBetween(r, 40, 90)),
		WindSpeedMs:     estimate.Round(estimate.Between(r, 0.5, 10), 1),
		PressureHpa:     float64(estimate.IntBetween(r, 995, 1030)),
		CloudsPercent:   clouds,
		Description:     description,
		Condition:       condition,
		DataSource:      estimate.Source,
	}
}
