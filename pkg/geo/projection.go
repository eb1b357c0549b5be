package geo

import "math"

const earthRadiusMeters = 6_371_000.0

// degToMeters converts degrees of arc on the earth's surface to meters.
const degToMeters = math.Pi / 180 * earthRadiusMeters

// Projection maps lat/lon degrees onto a plane in meters using an
// equirectangular projection around a reference latitude.
// Accurate to well under 1% within a few hundred kilometers of the reference.
type Projection struct {
	cosLat float64
}

// NewProjection returns a projection centered on refLat (degrees).
func NewProjection(refLat float64) Projection {
	return Projection{cosLat: math.Cos(refLat * math.Pi / 180)}
}

// Project converts lat/lon to planar meters.
func (p Projection) Project(lat, lon float64) Point {
	return Point{lon * p.cosLat * degToMeters, lat * degToMeters}
}
