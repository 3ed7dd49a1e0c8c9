package geography

import "math"

// Band is a coarse climate/biome band derived from absolute latitude.
type Band string

const (
	BandTropical  Band = "TROPICAL"
	BandTemperate Band = "TEMPERATE"
	BandSubpolar  Band = "SUBPOLAR"
	BandPolar     Band = "POLAR"
)

// Band edges in absolute degrees latitude.
const (
	tropicEdge    = 23.5
	temperateEdge = 55.0
	subpolarEdge  = 66.5
)

// BandFor returns the latitude band of the given latitude.
func BandFor(lat float64) Band {
	abs := math.Abs(lat)
	switch {
	case abs > subpolarEdge:
		return BandPolar
	case abs > temperateEdge:
		return BandSubpolar
	case abs > tropicEdge:
		return BandTemperate
	default:
		return BandTropical
	}
}

// Northern reports whether the latitude is in the northern hemisphere.
// The equator counts as northern.
func Northern(lat float64) bool {
	return lat >= 0
}
