// Package geography holds coarse, static knowledge about the Earth used to
// bias synthetic estimates: a land/ocean classifier, latitude bands, mountain
// ranges and country population densities.
//
// None of it is a geographic authority. Errors near coastlines and borders
// are expected.
package geography

import (
	"math"

	"github.com/arealens/arealens/internal/geometry"
)

// PolarLatitude is the latitude beyond which every point is treated as land or ice.
const PolarLatitude = 60.0

// Region is a named bounding box.
type Region struct {
	Name string
	Box  geometry.BoundingBox
}

// Continents are the coarse continental boxes used by IsLikelyOcean.
var Continents = []Region{
	{Name: "Europe", Box: geometry.BoundingBox{North: 71, South: 35, East: 40, West: -10}},
	{Name: "North America", Box: geometry.BoundingBox{North: 72, South: 15, East: -52, West: -168}},
	{Name: "South America", Box: geometry.BoundingBox{North: 13, South: -56, East: -34, West: -82}},
	{Name: "Africa", Box: geometry.BoundingBox{North: 37, South: -35, East: 52, West: -18}},
	{Name: "Asia", Box: geometry.BoundingBox{North: 77, South: -10, East: 180, West: 26}},
	{Name: "Australia", Box: geometry.BoundingBox{North: -10, South: -44, East: 154, West: 112}},
}

// IsLikelyOcean classifies a point as ocean unless it falls inside one of the
// continental boxes or the polar bands.
func IsLikelyOcean(lat, lon float64) bool {
	if math.Abs(lat) > PolarLatitude {
		return false
	}
	_, onLand := ContinentAt(lat, lon)
	return !onLand
}

// ContinentAt returns the first continent whose box contains the point.
func ContinentAt(lat, lon float64) (Region, bool) {
	for _, c := range Continents {
		if c.Box.Contains(lat, lon) {
			return c, true
		}
	}
	return Region{}, false
}
