// Package polyline encodes and decodes coordinate lists in the encoded
// polyline format popularised by Google Maps. Both the common 5-digit
// precision and the 6-digit precision used by OSRM and Valhalla are supported.
package polyline

import (
	"errors"
	"fmt"
	"math"
)

// Supported precisions, in decimal digits.
const (
	Precision5 = 5
	Precision6 = 6
)

// ErrMalformed is returned for input that ends inside a value or contains
// characters outside the encoding alphabet.
var ErrMalformed = errors.New("malformed polyline")

// ErrPrecision is returned for precisions other than 5 or 6.
var ErrPrecision = errors.New("unsupported polyline precision")

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64
	Lon float64
}

func factor(precision int) (float64, error) {
	switch precision {
	case Precision5:
		return 1e5, nil
	case Precision6:
		return 1e6, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrPrecision, precision)
	}
}

// Decode parses an encoded polyline. An empty string decodes to no coordinates.
func Decode(encoded string, precision int) ([]Coordinate, error) {
	f, err := factor(precision)
	if err != nil {
		return nil, err
	}
	if encoded == "" {
		return nil, nil
	}

	var (
		coords   []Coordinate
		lat, lon int64
		index    int
	)
	for index < len(encoded) {
		dLat, next, err := decodeValue(encoded, index)
		if err != nil {
			return nil, err
		}
		if next >= len(encoded) {
			return nil, fmt.Errorf("%w: latitude at offset %d has no longitude", ErrMalformed, index)
		}
		dLon, next, err := decodeValue(encoded, next)
		if err != nil {
			return nil, err
		}
		index = next

		lat += dLat
		lon += dLon
		coords = append(coords, Coordinate{Lat: float64(lat) / f, Lon: float64(lon) / f})
	}
	return coords, nil
}

// decodeValue reads one zig-zag varint starting at index and returns the
// value and the index after it.
func decodeValue(encoded string, index int) (int64, int, error) {
	var result int64
	shift := uint(0)
	for {
		if index >= len(encoded) {
			return 0, index, fmt.Errorf("%w: truncated value", ErrMalformed)
		}
		b := int64(encoded[index]) - 63
		if b < 0 || b > 0x3f {
			return 0, index, fmt.Errorf("%w: invalid character %q at offset %d", ErrMalformed, encoded[index], index)
		}
		if shift > 60 {
			return 0, index, fmt.Errorf("%w: value too long at offset %d", ErrMalformed, index)
		}
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, nil
	}
	return result >> 1, index, nil
}

// Encode renders coordinates at the given precision.
func Encode(coords []Coordinate, precision int) (string, error) {
	f, err := factor(precision)
	if err != nil {
		return "", err
	}

	buf := make([]byte, 0, len(coords)*8)
	var prevLat, prevLon int64
	for _, c := range coords {
		lat := int64(math.Round(c.Lat * f))
		lon := int64(math.Round(c.Lon * f))
		buf = encodeValue(buf, lat-prevLat)
		buf = encodeValue(buf, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return string(buf), nil
}

func encodeValue(buf []byte, value int64) []byte {
	v := value << 1
	if value < 0 {
		v = ^v
	}
	for v >= 0x20 {
		buf = append(buf, byte((v&0x1f)|0x20)+63)
		v >>= 5
	}
	return append(buf, byte(v)+63)
}
