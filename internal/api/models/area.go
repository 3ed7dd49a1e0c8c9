package models

import (
	"errors"
	"fmt"

	"github.com/arealens/arealens/internal/analysis"
	"github.com/arealens/arealens/internal/geometry"
	"github.com/arealens/arealens/pkg/polyline"
)

// AreaRequest describes a polygon either as explicit vertices or as an
// encoded polyline. Exactly one of Ring and EncodedPolyline must be set.
type AreaRequest struct {
	Ring            []Point `json:"ring,omitempty"`
	EncodedPolyline string  `json:"encodedPolyline,omitempty"`

	// Precision of EncodedPolyline, 5 (default) or 6.
	Precision int `json:"precision,omitempty"`

	// Credentials maps provider names to tokens. They take precedence over
	// credentials configured on the server.
	Credentials map[string]string `json:"credentials,omitempty"`
}

// Validate converts the request to a ring. Out-of-range coordinates and
// malformed polylines are reported as field errors. Short rings are valid.
func (r AreaRequest) Validate() (geometry.Ring, []FieldError) {
	hasRing := r.Ring != nil
	hasPolyline := r.EncodedPolyline != ""

	switch {
	case hasRing && hasPolyline:
		return nil, []FieldError{{Field: "ring", Message: "ring and encodedPolyline are mutually exclusive", Code: CodeConflict}}
	case !hasRing && !hasPolyline:
		return nil, []FieldError{{Field: "ring", Message: "ring or encodedPolyline is required", Code: CodeRequired}}
	}

	var ring geometry.Ring
	if hasPolyline {
		precision := r.Precision
		if precision == 0 {
			precision = polyline.Precision5
		}
		coords, err := polyline.Decode(r.EncodedPolyline, precision)
		if err != nil {
			field := "encodedPolyline"
			if errors.Is(err, polyline.ErrPrecision) {
				field = "precision"
			}
			return nil, []FieldError{{Field: field, Message: err.Error(), Code: CodeInvalid}}
		}
		ring = make(geometry.Ring, len(coords))
		for i, c := range coords {
			ring[i] = geometry.Point{Lat: c.Lat, Lon: c.Lon}
		}
	} else {
		ring = make(geometry.Ring, len(r.Ring))
		for i, p := range r.Ring {
			ring[i] = geometry.Point{Lat: p.Lat, Lon: p.Lon}
		}
	}

	var errs []FieldError
	field := "ring"
	if hasPolyline {
		field = "encodedPolyline"
	}
	for i, p := range ring {
		if !p.Valid() {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "latitude must be within [-90, 90] and longitude within [-180, 180]",
				Code:    CodeOutOfRange,
			})
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return ring, nil
}

// AreaAnalysis is the response of POST /v1/areas:analyze.
type AreaAnalysis struct {
	RequestID string `json:"requestId"`
	*analysis.Report
}

// AreaMetrics is the response of POST /v1/areas:metrics.
type AreaMetrics struct {
	geometry.Metrics
	AreaSquareKilometers float64 `json:"areaSquareKilometers"`
}

// NewAreaMetrics wraps metrics with the derived km² value.
func NewAreaMetrics(m geometry.Metrics) AreaMetrics {
	return AreaMetrics{Metrics: m, AreaSquareKilometers: m.AreaSquareKilometers()}
}
