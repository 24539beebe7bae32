package model

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkbhex"
)

// EndpointsFromEWKBHex decodes a hex EWKB line geometry, as PostGIS prints it,
// and returns its first and last coordinate.
func EndpointsFromEWKBHex(s string) (Coordinate, Coordinate, error) {
	g, err := ewkbhex.Decode(s)
	if err != nil {
		return Coordinate{}, Coordinate{}, fmt.Errorf("%w: decode geometry: %v", ErrMalformedInput, err)
	}
	return Endpoints(g)
}

// Endpoints returns the first and last coordinate of a LineString or MultiLineString.
func Endpoints(g geom.T) (Coordinate, Coordinate, error) {
	switch g.(type) {
	case *geom.LineString, *geom.MultiLineString:
	default:
		return Coordinate{}, Coordinate{}, fmt.Errorf("%w: unsupported geometry type %T", ErrMalformedInput, g)
	}

	flat := g.FlatCoords()
	stride := g.Stride()
	if stride < 2 || len(flat) < 2*stride {
		return Coordinate{}, Coordinate{}, fmt.Errorf("%w: geometry has fewer than two coordinates", ErrMalformedInput)
	}

	last := len(flat) - stride
	from := Coordinate{X: flat[0], Y: flat[1]}
	to := Coordinate{X: flat[last], Y: flat[last+1]}
	return from, to, nil
}
