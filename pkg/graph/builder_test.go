package graph

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planar_router/pkg/geo"
)

func triangleInput() *Input {
	// 0 -- 1 -- 2 and 0 -- 2
	return &Input{
		Points: []geo.Point{{0, 0}, {1, 0}, {1, 1}},
		Connections: []Connection{
			{From: 0, To: 1},
			{From: 1, To: 2},
			{From: 0, To: 2},
		},
	}
}

func TestBuildTriangleMirrorsEdges(t *testing.T) {
	g, err := Build(triangleInput())
	require.NoError(t, err)

	assert.Equal(t, uint32(3), g.NumNodes)
	assert.Equal(t, uint32(6), g.NumEdges)
	assert.Len(t, g.FirstOut, 4)

	for u := uint32(0); u < g.NumNodes; u++ {
		for _, e := range g.Edges(u) {
			var found bool
			for _, back := range g.Edges(e.To) {
				if back.To == u && back.Weight == e.Weight {
					found = true
				}
			}
			assert.Truef(t, found, "edge %d->%d has no mirror", u, e.To)
		}
	}

	edges := g.Edges(0)
	require.Len(t, edges, 2)
	assert.Equal(t, uint32(1), edges[0].To)
	assert.InDelta(t, 1.0, edges[0].Weight, 1e-12)
	assert.Equal(t, uint32(2), edges[1].To)
	assert.InDelta(t, math.Sqrt2, edges[1].Weight, 1e-12)
}

func TestBuildCopiesCoordinates(t *testing.T) {
	in := triangleInput()
	g, err := Build(in)
	require.NoError(t, err)

	in.Points[0] = geo.Point{42, 42}
	assert.Equal(t, geo.Point{0, 0}, g.Coords.At(0))
	assert.Equal(t, 3, g.Coords.Len())
}

func TestBuildRejectsOutOfRangeConnection(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
	}{
		{"from out of range", Connection{From: 3, To: 0}},
		{"to out of range", Connection{From: 0, To: 7}},
		{"both out of range", Connection{From: 5, To: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := triangleInput()
			in.Connections = append(in.Connections, tt.conn)
			g, err := Build(in)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestBuildRejectsNonFiniteCoordinates(t *testing.T) {
	tests := []struct {
		name string
		p    geo.Point
	}{
		{"nan x", geo.Point{math.NaN(), 0}},
		{"nan y", geo.Point{0, math.NaN()}},
		{"positive infinity", geo.Point{math.Inf(1), 0}},
		{"negative infinity", geo.Point{0, math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := triangleInput()
			in.Points[1] = tt.p
			g, err := Build(in)
			assert.Nil(t, g)
			assert.ErrorIs(t, err, ErrMalformedInput)
			assert.ErrorContains(t, err, "node 1")
		})
	}
}

func TestBuildRejectsOverflowingWeight(t *testing.T) {
	in := &Input{
		Points:      []geo.Point{{-math.MaxFloat64, 0}, {math.MaxFloat64, 0}},
		Connections: []Connection{{From: 0, To: 1}},
	}
	_, err := Build(in)
	assert.ErrorIs(t, err, ErrMalformedInput)
}

func TestBuildKeepsDuplicatesAndSelfLoops(t *testing.T) {
	in := &Input{
		Points:      []geo.Point{{0, 0}, {3, 4}},
		Connections: []Connection{{0, 1}, {1, 0}, {1, 1}},
	}
	g, err := Build(in)
	require.NoError(t, err)

	assert.Equal(t, uint32(6), g.NumEdges)
	assert.Len(t, g.Edges(0), 2)
	for _, e := range g.Edges(0) {
		assert.InDelta(t, 5.0, e.Weight, 1e-12)
	}

	var selfLoops int
	for _, e := range g.Edges(1) {
		if e.To == 1 {
			selfLoops++
			assert.Zero(t, e.Weight)
		}
	}
	assert.Equal(t, 2, selfLoops)
}

func TestBuildEmptyGraph(t *testing.T) {
	g, err := Build(&Input{})
	require.NoError(t, err)

	assert.Zero(t, g.NumNodes)
	assert.Zero(t, g.NumEdges)
	assert.Equal(t, []uint32{0}, g.FirstOut)
	assert.False(t, g.HasNode(0))
}

func TestBuildIsolatedNodes(t *testing.T) {
	g, err := Build(&Input{Points: []geo.Point{{0, 0}, {1, 1}}})
	require.NoError(t, err)

	assert.True(t, g.HasNode(1))
	assert.Empty(t, g.Edges(0))
	assert.Empty(t, g.Edges(1))
}
