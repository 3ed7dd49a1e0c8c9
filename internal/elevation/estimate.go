package elevation

import (
	"math"

	"github.com/arealens/arealens/internal/estimate"
	"github.com/arealens/arealens/internal/geography"
	"github.com/arealens/arealens/internal/geometry"
)

// Lowland elevation band in meters.
const (
	lowlandMin = 50.0
	lowlandMax = 250.0
)

// Estimate synthesizes an elevation: sea level over ocean, the range's band
// inside a known mountain range, lowland otherwise.
func Estimate(p geometry.Point, r estimate.Rand) *Result {
	v := 0.0
	if !geography.IsLikelyOcean(p.Lat, p.Lon) {
		lo, hi := lowlandMin, lowlandMax
		if m, ok := geography.MountainRangeAt(p.Lat, p.Lon); ok {
			lo, hi = m.MinElevation, m.MaxElevation
		}
		v = math.Round(estimate.Between(r, lo, hi))
	}

	res := Meters(v)
	res.DataSource = estimate.Source
	return res
}
