package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"planar_router/pkg/geo"
	"planar_router/pkg/graph"
)

// DefaultSnapRadius is the default maximum distance, in map units, between a
// query point and the node it snaps to.
const DefaultSnapRadius = 100.0

// ErrPointTooFar is returned when no node lies within the snap radius.
var ErrPointTooFar = errors.New("point too far from any node")

// SnapResult is a query point resolved to its nearest node.
type SnapResult struct {
	Node uint32
	Dist float64 // distance from the query point to the node
}

// Snapper resolves free coordinates to graph nodes using an R-tree over the
// node coordinates.
type Snapper struct {
	tr     rtree.RTreeG[uint32]
	coords graph.Coordinates
	radius float64
}

// NewSnapper indexes every node of g. A radius <= 0 disables the distance
// limit.
func NewSnapper(g *graph.Graph, radius float64) *Snapper {
	s := &Snapper{coords: g.Coords, radius: radius}
	for u := uint32(0); u < g.NumNodes; u++ {
		p := g.Coords.At(u)
		s.tr.Insert(p, p, u)
	}
	return s
}

// Radius returns the configured snap radius.
func (s *Snapper) Radius() float64 { return s.radius }

// Snap returns the node closest to p. Equidistant nodes resolve to the lowest id.
func (s *Snapper) Snap(p geo.Point) (SnapResult, error) {
	best := SnapResult{Dist: math.Inf(1)}
	found := false

	visit := func(_, _ [2]float64, u uint32) bool {
		d := geo.Distance(p, s.coords.At(u))
		if d < best.Dist || (d == best.Dist && u < best.Node) {
			best = SnapResult{Node: u, Dist: d}
			found = true
		}
		return true
	}

	if s.radius > 0 {
		lo := [2]float64{p[0] - s.radius, p[1] - s.radius}
		hi := [2]float64{p[0] + s.radius, p[1] + s.radius}
		s.tr.Search(lo, hi, visit)
	} else {
		s.tr.Scan(visit)
	}

	if !found || (s.radius > 0 && best.Dist > s.radius) {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}
