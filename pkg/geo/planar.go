package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a planar (x, y) coordinate. The y axis points up.
type Point = orb.Point

// NewPoint returns the point (x, y).
func NewPoint(x, y float64) Point {
	return Point{x, y}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return planar.Distance(a, b)
}

// IsFinite reports whether both coordinates of p are finite numbers.
func IsFinite(p Point) bool {
	return !math.IsNaN(p[0]) && !math.IsInf(p[0], 0) &&
		!math.IsNaN(p[1]) && !math.IsInf(p[1], 0)
}

// Vector returns the displacement from a to b.
func Vector(a, b Point) Point {
	return Point{b[0] - a[0], b[1] - a[1]}
}

// Dot returns the dot product of u and v.
func Dot(u, v Point) float64 {
	return u[0]*v[0] + u[1]*v[1]
}

// Norm returns the length of v.
func Norm(v Point) float64 {
	return math.Hypot(v[0], v[1])
}

// Orientation returns -u.x*v.y + u.y*v.x.
// It is positive when v points clockwise of u, i.e. a right turn with y up.
func Orientation(u, v Point) float64 {
	return -u[0]*v[1] + u[1]*v[0]
}

// AngleBetween returns the unsigned angle between u and v in degrees, in [0, 180].
// ok is false when either vector has zero length.
func AngleBetween(u, v Point) (deg float64, ok bool) {
	nu, nv := Norm(u), Norm(v)
	if nu == 0 || nv == 0 {
		return 0, false
	}

	// Rounding can push the cosine just outside [-1, 1].
	cos := Dot(u, v) / (nu * nv)
	cos = math.Max(-1, math.Min(1, cos))

	return math.Acos(cos) * 180 / math.Pi, true
}

// Bound returns the smallest box containing all points.
func Bound(points []Point) orb.Bound {
	if len(points) == 0 {
		return orb.Bound{}
	}
	return orb.MultiPoint(points).Bound()
}
