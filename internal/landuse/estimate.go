package landuse

import (
	"github.com/arealens/arealens/internal/estimate"
	"github.com/arealens/arealens/internal/geography"
	"github.com/arealens/arealens/internal/geometry"
)

type shareRange struct{ lo, hi int }

type biome struct {
	urban, agriculture, forest, water, other shareRange
}

var biomes = map[geography.Band]biome{
	geography.BandPolar: {
		urban: shareRange{0, 2}, agriculture: shareRange{0, 3}, forest: shareRange{0, 10},
		water: shareRange{10, 40}, other: shareRange{50, 80},
	},
	geography.BandSubpolar: {
		urban: shareRange{1, 5}, agriculture: shareRange{5, 20}, forest: shareRange{40, 70},
		water: shareRange{5, 15}, other: shareRange{5, 20},
	},
	geography.BandTemperate: {
		urban: shareRange{5, 20}, agriculture: shareRange{30, 50}, forest: shareRange{15, 35},
		water: shareRange{2, 8}, other: shareRange{5, 15},
	},
	geography.BandTropical: {
		urban: shareRange{3, 15}, agriculture: shareRange{20, 40}, forest: shareRange{30, 60},
		water: shareRange{3, 10}, other: shareRange{5, 15},
	},
}

// oceanResult is the fixed split used over open water.
func oceanResult() *Result {
	return &Result{Water: 98, Other: 2}
}

// Estimate synthesizes land-use shares for the centroid's biome. Each share is
// drawn independently, so the total is not necessarily 100.
func Estimate(m geometry.Metrics, r estimate.Rand) *Result {
	c := m.Centroid

	var res *Result
	if geography.IsLikelyOcean(c.Lat, c.Lon) {
		res = oceanResult()
	} else {
		b := biomes[geography.BandFor(c.Lat)]
		draw := func(s shareRange) int { return estimate.IntBetween(r, s.lo, s.hi) }
		res = &Result{
			Urban:       draw(b.urban),
			Agriculture: draw(b.agriculture),
			Forest:      draw(b.forest),
			Water:       draw(b.water),
			Other:       draw(b.other),
		}
	}

	res.DataSource = estimate.Source
	return res
}
