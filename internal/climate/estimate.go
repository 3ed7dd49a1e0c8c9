package climate

import (
	"math"

	"github.com/arealens/arealens/internal/estimate"
	"github.com/arealens/arealens/internal/geography"
	"github.com/arealens/arealens/internal/geometry"
)

// Estimator curve parameters.
const (
	maxAmplitudeLat   = 35.0
	amplitudeFloor    = 5.0
	baselineEquator   = 25.0
	baselineMin       = 5.0
	summerShiftMonths = 3
	temperatureNoise  = 1.0

	precipBaseMin    = 20.0
	precipBaseMax    = 60.0
	precipPerDeltaC  = 4.0
	precipPerDegreeC = 0.8
)

// Estimate synthesizes a seasonal temperature curve and a matching
// precipitation series. Amplitude is the spread between the coldest and the
// warmest month; summer peaks in July north of the equator and in January south of it.
func Estimate(p geometry.Point, r estimate.Rand) *Result {
	absLat := math.Abs(p.Lat)
	amplitude := math.Min(maxAmplitudeLat, absLat) + amplitudeFloor
	baseline := math.Max(baselineMin, baselineEquator-absLat/2)

	shift := summerShiftMonths
	if !geography.Northern(p.Lat) {
		shift = -summerShiftMonths
	}

	var temps, precip [MonthsPerYear]float64
	for m := range MonthsPerYear {
		phase := 2 * math.Pi * float64(m-shift) / MonthsPerYear
		temps[m] = baseline + amplitude/2*math.Sin(phase) + estimate.Noise(r, temperatureNoise)
	}
	for m := range MonthsPerYear {
		prev := temps[(m+MonthsPerYear-1)%MonthsPerYear]
		delta := math.Abs(temps[m] - prev)
		precip[m] = estimate.Between(r, precipBaseMin, precipBaseMax) +
			precipPerDeltaC*delta +
			precipPerDegreeC*math.Abs(temps[m])
	}

	res := FromMonthly(temps, precip)
	res.DataSource = estimate.Source
	return res
}
