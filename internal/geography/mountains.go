package geography

import "github.com/arealens/arealens/internal/geometry"

// MountainRange is a named box with the plausible elevation band of its interior.
type MountainRange struct {
	Region
	MinElevation float64
	MaxElevation float64
}

// MountainRanges are the ranges the elevation estimator knows about.
var MountainRanges = []MountainRange{
	{
		Region:       Region{Name: "Alps", Box: geometry.BoundingBox{North: 48, South: 43.5, East: 16, West: 5}},
		MinElevation: 1000,
		MaxElevation: 3000,
	},
	{
		Region:       Region{Name: "Himalaya", Box: geometry.BoundingBox{North: 36, South: 27, East: 97, West: 70}},
		MinElevation: 3000,
		MaxElevation: 5000,
	},
	{
		Region:       Region{Name: "Andes", Box: geometry.BoundingBox{North: 10, South: -55, East: -64, West: -80}},
		MinElevation: 2000,
		MaxElevation: 4500,
	},
	{
		Region:       Region{Name: "Rockies", Box: geometry.BoundingBox{North: 60, South: 35, East: -105, West: -125}},
		MinElevation: 1200,
		MaxElevation: 3500,
	},
}

// MountainRangeAt returns the mountain range containing the point, if any.
func MountainRangeAt(lat, lon float64) (MountainRange, bool) {
	for _, m := range MountainRanges {
		if m.Box.Contains(lat, lon) {
			return m, true
		}
	}
	return MountainRange{}, false
}
