package population

import (
	"github.com/arealens/arealens/internal/estimate"
	"github.com/arealens/arealens/internal/geography"
	"github.com/arealens/arealens/internal/geometry"
)

type densityRange struct{ lo, hi float64 }

// densityByBand is people/km² for settled land in each latitude band.
var densityByBand = map[geography.Band]densityRange{
	geography.BandPolar:     {0.1, 2},
	geography.BandSubpolar:  {5, 45},
	geography.BandTemperate: {50, 250},
	geography.BandTropical:  {30, 180},
}

// Estimate synthesizes a population from the centroid's latitude band.
// Open ocean has no population.
func Estimate(m geometry.Metrics, r estimate.Rand) *Result {
	areaKm2 := m.AreaSquareKilometers()
	c := m.Centroid

	density := 0.0
	if !geography.IsLikelyOcean(c.Lat, c.Lon) {
		band := densityByBand[geography.BandFor(c.Lat)]
		density = estimate.Round(estimate.Between(r, band.lo, band.hi), 1)
	}

	res := FromDensity(areaKm2, density)
	res.DataSource = estimate.Source
	return res
}
