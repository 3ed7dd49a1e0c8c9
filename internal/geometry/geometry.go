// Package geometry computes area-level metrics for user drawn polygons on the
// Earth's surface. All public functions take and return degrees; trigonometry
// is done in radians internally.
//
// Malformed input never produces an error: rings that are too short yield zero
// metrics and a nil GeoJSON feature.
package geometry

import (
	"errors"
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for area and distance.
const EarthRadiusMeters = 6371000.0

// MinRingVertices is the minimum number of vertices for a ring to describe an area.
const MinRingVertices = 3

// ErrCoordinateOutOfRange is returned by Validate for coordinates outside
// [-90,90] latitude or [-180,180] longitude.
var ErrCoordinateOutOfRange = errors.New("coordinate out of range")

// Point is a latitude/longitude pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point lies within the legal coordinate ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// Ring is an ordered polygon boundary in the order it was drawn. Closure is
// implied: the first vertex does not need to be repeated at the end.
type Ring []Point

// Closed reports whether the last vertex repeats the first.
func (r Ring) Closed() bool {
	return len(r) > 1 && r[0] == r[len(r)-1]
}

// Open returns the ring without an explicit closing vertex.
func (r Ring) Open() Ring {
	if r.Closed() {
		return r[:len(r)-1]
	}
	return r
}

// Validate checks every vertex is within coordinate bounds.
// Ring length is not validated; short rings are handled by the metric functions.
func (r Ring) Validate() error {
	for i, p := range r {
		if !p.Valid() {
			return fmt.Errorf("vertex %d (%f, %f): %w", i, p.Lat, p.Lon, ErrCoordinateOutOfRange)
		}
	}
	return nil
}

// BoundingBox is the min/max envelope of a ring. No date-line unwrapping is done.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Contains reports whether the point lies inside the box, edges included.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return lat >= b.South && lat <= b.North && lon >= b.West && lon <= b.East
}

// Metrics holds the geometric summary of a polygon.
type Metrics struct {
	AreaSquareMeters float64     `json:"areaSquareMeters"`
	PerimeterMeters  float64     `json:"perimeterMeters"`
	VertexCount      int         `json:"vertexCount"`
	Centroid         Point       `json:"centroid"`
	BoundingBox      BoundingBox `json:"boundingBox"`
}

// AreaSquareKilometers returns the area in km².
func (m Metrics) AreaSquareKilometers() float64 {
	return m.AreaSquareMeters / 1e6
}

// Polygon pairs a ring with its precomputed metrics. It is the shape handed
// to data providers so metrics are only computed once per request.
type Polygon struct {
	Ring    Ring
	Metrics Metrics
}

// NewPolygon computes metrics for the ring.
func NewPolygon(r Ring) Polygon {
	open := r.Open()
	return Polygon{Ring: open, Metrics: Compute(open)}
}

// Compute returns all metrics for the ring. Rings with fewer than three
// vertices yield zero metrics.
func Compute(r Ring) Metrics {
	r = r.Open()
	if len(r) < MinRingVertices {
		return Metrics{}
	}
	return Metrics{
		AreaSquareMeters: Area(r),
		PerimeterMeters:  Perimeter(r),
		VertexCount:      len(r),
		Centroid:         Centroid(r),
		BoundingBox:      BoundingBoxOf(r),
	}
}

// BoundingBoxOf returns the bounding box of the ring in a single scan.
// An empty ring yields the zero box.
func BoundingBoxOf(r Ring) BoundingBox {
	if len(r) == 0 {
		return BoundingBox{}
	}
	box := BoundingBox{North: r[0].Lat, South: r[0].Lat, East: r[0].Lon, West: r[0].Lon}
	for _, p := range r[1:] {
		box.North = math.Max(box.North, p.Lat)
		box.South = math.Min(box.South, p.Lat)
		box.East = math.Max(box.East, p.Lon)
		box.West = math.Min(box.West, p.Lon)
	}
	return box
}

// Area returns the spherical area of the ring in square meters using the
// longitude/latitude line integral:
//
//	|Σ lon_i·sin(lat_i+1) − lon_i+1·sin(lat_i)| · R² / 2
//
// It is accurate for shapes of the size a user draws on a map, not for
// polygons spanning a hemisphere. Returns 0 for fewer than three vertices.
func Area(r Ring) float64 {
	if len(r) < MinRingVertices {
		return 0
	}
	var sum float64
	n := len(r)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		sum += toRadians(a.Lon)*math.Sin(toRadians(b.Lat)) -
			toRadians(b.Lon)*math.Sin(toRadians(a.Lat))
	}
	return math.Abs(sum) * EarthRadiusMeters * EarthRadiusMeters / 2
}

// Perimeter returns the great-circle length of the ring boundary in meters,
// including the closing edge. Returns 0 for fewer than two vertices.
func Perimeter(r Ring) float64 {
	if len(r) < 2 {
		return 0
	}
	var total float64
	n := len(r)
	for i := 0; i < n; i++ {
		total += Haversine(r[i], r[(i+1)%n])
	}
	return total
}

// Centroid returns the arithmetic mean of the vertex coordinates. This is an
// approximation, not the area-weighted centroid of the polygon.
func Centroid(r Ring) Point {
	if len(r) == 0 {
		return Point{}
	}
	var lat, lon float64
	for _, p := range r {
		lat += p.Lat
		lon += p.Lon
	}
	n := float64(len(r))
	return Point{Lat: lat / n, Lon: lon / n}
}

// IsDegenerate reports whether the ring has fewer than three distinct vertices.
func IsDegenerate(r Ring) bool {
	r = r.Open()
	if len(r) < MinRingVertices {
		return true
	}
	seen := make(map[Point]struct{}, len(r))
	for _, p := range r {
		seen[p] = struct{}{}
		if len(seen) >= MinRingVertices {
			return false
		}
	}
	return true
}

// Haversine returns the great-circle distance between two points in meters.
func Haversine(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	sinDLat := math.Sin(dLat / 2)
	sinDLon := math.Sin(dLon / 2)

	h := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLon*sinDLon
	return 2 * EarthRadiusMeters * math.Asin(math.Min(1, math.Sqrt(h)))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
