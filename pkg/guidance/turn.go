// Package guidance turns a node route into per-node driving instructions.
package guidance

import (
	"fmt"

	"planar_router/pkg/geo"
	"planar_router/pkg/graph"
)

// StraightThreshold is the turn angle, in degrees, below which a change of
// heading is reported as going straight.
const StraightThreshold = 10.0

// Kind distinguishes going straight from turning.
type Kind uint8

const (
	Straight Kind = iota
	Turning
)

func (k Kind) String() string {
	switch k {
	case Straight:
		return "straight"
	case Turning:
		return "turn"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Direction is the side a turn goes to.
type Direction uint8

const (
	Left Direction = iota
	Right
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", d)
	}
}

// Turn is the instruction at one node of a route. Angle and Direction are
// meaningful only when Kind is Turning.
type Turn struct {
	Kind      Kind
	Angle     float64 // degrees, in [StraightThreshold, 180]
	Direction Direction
}

// String renders the instruction as "Straight", "Left by 90.00" or
// "Right by 45.00".
func (t Turn) String() string {
	if t.Kind == Straight {
		return "Straight"
	}
	side := "Left"
	if t.Direction == Right {
		side = "Right"
	}
	return fmt.Sprintf("%s by %-5.2f", side, t.Angle)
}

// Annotate returns one Turn per route node. The first and last nodes are
// always Straight; every interior node is classified from the heading change
// between its incoming and outgoing segments.
func Annotate(nodes []uint32, coords graph.Coordinates) []Turn {
	turns := make([]Turn, len(nodes))
	for i := 1; i+1 < len(nodes); i++ {
		turns[i] = classify(
			coords.At(nodes[i-1]),
			coords.At(nodes[i]),
			coords.At(nodes[i+1]),
		)
	}
	return turns
}

// classify computes the instruction at "at" when travelling from -> at -> to.
func classify(from, at, to geo.Point) Turn {
	in := geo.Vector(from, at)
	out := geo.Vector(at, to)

	angle, ok := geo.AngleBetween(in, out)
	if !ok || angle < StraightThreshold {
		// A zero-length segment has no heading.
		return Turn{Kind: Straight}
	}

	dir := Left
	if geo.Orientation(in, out) > 0 {
		dir = Right
	}
	return Turn{Kind: Turning, Angle: angle, Direction: dir}
}
