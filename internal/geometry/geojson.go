package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ToOrbPolygon converts the ring to an orb polygon in (lon, lat) order with an
// explicitly closed outer ring. Returns nil for fewer than three vertices.
func ToOrbPolygon(r Ring) orb.Polygon {
	r = r.Open()
	if len(r) < MinRingVertices {
		return nil
	}
	ring := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// ToGeoJSON returns the ring as a GeoJSON Polygon feature. Coordinates are in
// (longitude, latitude) order and the ring is closed. Returns nil for fewer
// than three vertices.
func ToGeoJSON(r Ring) *geojson.Feature {
	poly := ToOrbPolygon(r)
	if poly == nil {
		return nil
	}
	return geojson.NewFeature(poly)
}

// ToFeatureCollection wraps the ring's feature in a FeatureCollection, the
// shape expected by spatial statistics services. Returns nil for short rings.
func ToFeatureCollection(r Ring) *geojson.FeatureCollection {
	f := ToGeoJSON(r)
	if f == nil {
		return nil
	}
	return geojson.NewFeatureCollection().Append(f)
}
