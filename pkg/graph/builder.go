package graph

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"planar_router/pkg/geo"
)

// ErrMalformedInput is returned when map data is structurally invalid.
var ErrMalformedInput = errors.New("malformed input")

// Build creates a CSR Graph from coordinates and undirected connections.
// Each connection yields two half-edges weighted by the Euclidean distance
// between its endpoints. Duplicate connections are kept.
func Build(in *Input) (*Graph, error) {
	if uint64(len(in.Points)) >= math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d nodes exceeds limit", ErrMalformedInput, len(in.Points))
	}
	if 2*uint64(len(in.Connections)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d connections exceeds limit", ErrMalformedInput, len(in.Connections))
	}
	numNodes := uint32(len(in.Points))
	if err := checkPoints(in.Points); err != nil {
		return nil, err
	}

	// Step 1: Validate node references and expand to half-edges.
	type halfEdge struct {
		from   uint32
		to     uint32
		weight float64
	}

	half := make([]halfEdge, 0, 2*len(in.Connections))
	for i, c := range in.Connections {
		if c.From >= numNodes || c.To >= numNodes {
			return nil, fmt.Errorf("%w: connection %d (%d, %d) references a node outside [0, %d)",
				ErrMalformedInput, i, c.From, c.To, numNodes)
		}
		w := geo.Distance(in.Points[c.From], in.Points[c.To])
		if math.IsInf(w, 0) {
			return nil, fmt.Errorf("%w: connection %d (%d, %d) is too long to measure",
				ErrMalformedInput, i, c.From, c.To)
		}
		half = append(half,
			halfEdge{from: c.From, to: c.To, weight: w},
			halfEdge{from: c.To, to: c.From, weight: w},
		)
	}

	// Step 2: Sort half-edges by source node.
	sort.Slice(half, func(i, j int) bool {
		if half[i].from != half[j].from {
			return half[i].from < half[j].from
		}
		return half[i].to < half[j].to
	})

	// Step 3: Build CSR arrays.
	numEdges := uint32(len(half))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]float64, numEdges)

	for i, e := range half {
		head[i] = e.to
		weight[i] = e.weight
	}

	// Build FirstOut via counting.
	for _, e := range half {
		firstOut[e.from+1]++
	}
	// Prefix sum.
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	coords := make(Coordinates, numNodes)
	copy(coords, in.Points)

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		Weight:   weight,
		Coords:   coords,
	}, nil
}

// checkPoints rejects coordinates that would give NaN or infinite weights.
func checkPoints(points []geo.Point) error {
	for i, p := range points {
		if !geo.IsFinite(p) {
			return fmt.Errorf("%w: node %d has non-finite coordinates (%g, %g)",
				ErrMalformedInput, i, p[0], p[1])
		}
	}
	return nil
}
