package routing

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"planar_router/pkg/geo"
	"planar_router/pkg/graph"
	"planar_router/pkg/guidance"
)

// buildTestEngine creates an engine over:
//
//	3 ---- 2
//	       |
//	0 ---- 1        5 ---- 6   (separate component)
//	|
//	4
func buildTestEngine(t *testing.T) *Engine {
	t.Helper()
	g := mustBuild(t, &graph.Input{
		Points: []geo.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, -1}, {10, 10}, {11, 10}},
		Connections: []graph.Connection{
			{From: 0, To: 1}, {From: 1, To: 2}, {From: 2, To: 3}, {From: 0, To: 4}, {From: 5, To: 6},
		},
	})
	return NewEngine(g, zap.NewNop(), WithSnapRadius(2))
}

func TestEngineRouteTriangleScenario(t *testing.T) {
	e := NewEngine(triangle(t), zap.NewNop())

	res, err := e.Route(context.Background(), 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 2}, res.Nodes)
	assert.InDelta(t, math.Sqrt2, res.Cost, 1e-12)
	require.Len(t, res.Turns, 2)
	assert.Equal(t, guidance.Straight, res.Turns[0].Kind)
	assert.Equal(t, guidance.Straight, res.Turns[1].Kind)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 1}}, res.Geometry)
}

func TestEngineRouteTurns(t *testing.T) {
	e := buildTestEngine(t)

	res, err := e.Route(context.Background(), 4, 3)
	require.NoError(t, err)
	assert.Equal(t, []uint32{4, 0, 1, 2, 3}, res.Nodes)
	assert.InDelta(t, 4.0, res.Cost, 1e-12)

	want := []string{"Straight", "Right by 90.00", "Left by 90.00", "Left by 90.00", "Straight"}
	got := make([]string, len(res.Turns))
	for i, tr := range res.Turns {
		got[i] = tr.String()
	}
	assert.Equal(t, want, got)
}

func TestEngineRouteErrors(t *testing.T) {
	e := buildTestEngine(t)
	ctx := context.Background()

	_, err := e.Route(ctx, 0, 6)
	assert.ErrorIs(t, err, ErrNotReachable)

	_, err = e.Route(ctx, 0, 7)
	assert.ErrorIs(t, err, ErrInvalidNode)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = e.Route(cancelled, 0, 1)
	assert.ErrorIs(t, err, context.Canceled)

	st := e.Stats()
	assert.Equal(t, uint64(0), st.Routes)
	assert.Equal(t, uint64(2), st.Failures)
}

func TestEngineNearest(t *testing.T) {
	e := buildTestEngine(t)

	snap, err := e.Nearest(geo.Point{10.2, 9.5})
	require.NoError(t, err)
	assert.Equal(t, uint32(5), snap.Node)

	_, err = e.Nearest(geo.Point{5, 5})
	assert.ErrorIs(t, err, ErrPointTooFar)
}

func TestEngineStats(t *testing.T) {
	e := buildTestEngine(t)
	_, err := e.Route(context.Background(), 0, 2)
	require.NoError(t, err)

	st := e.Stats()
	assert.Equal(t, uint32(7), st.Nodes)
	assert.Equal(t, uint32(5), st.Connections)
	assert.Equal(t, 2, st.Components)
	assert.Equal(t, [4]float64{0, -1, 11, 10}, st.Bound)
	assert.Equal(t, uint64(1), st.Routes)
}

func TestRouteResultGeoJSON(t *testing.T) {
	e := buildTestEngine(t)
	res, err := e.Route(context.Background(), 0, 2)
	require.NoError(t, err)

	fc := res.GeoJSON()
	require.Len(t, fc.Features, 4)
	assert.Equal(t, "LineString", fc.Features[0].Geometry.GeoJSONType())
	assert.InDelta(t, 2.0, fc.Features[0].Properties["cost"], 1e-12)
	assert.Equal(t, uint32(1), fc.Features[2].Properties["node"])
	assert.Equal(t, "Left by 90.00", fc.Features[2].Properties["instruction"])

	data, err := json.Marshal(fc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"FeatureCollection"`)
}

func TestRouteResultGeoJSONSingleNode(t *testing.T) {
	e := buildTestEngine(t)
	res, err := e.Route(context.Background(), 2, 2)
	require.NoError(t, err)

	fc := res.GeoJSON()
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "Point", fc.Features[0].Geometry.GeoJSONType())
	assert.Equal(t, uint32(2), fc.Features[0].Properties["node"])
	assert.Equal(t, "Straight", fc.Features[0].Properties["instruction"])
}

func TestRouteBatch(t *testing.T) {
	e := buildTestEngine(t)

	queries := []Query{
		{Start: 0, Goal: 3},
		{Start: 0, Goal: 6},
		{Start: 9, Goal: 0},
		{Start: 5, Goal: 6},
		{Start: 2, Goal: 2},
	}
	results := e.RouteBatch(context.Background(), queries, 2)
	require.Len(t, results, len(queries))

	for i, r := range results {
		assert.Equal(t, queries[i], r.Query)
	}
	require.NoError(t, results[0].Err)
	assert.Equal(t, []uint32{0, 1, 2, 3}, results[0].Result.Nodes)
	assert.ErrorIs(t, results[1].Err, ErrNotReachable)
	assert.ErrorIs(t, results[2].Err, ErrInvalidNode)
	require.NoError(t, results[3].Err)
	assert.InDelta(t, 1.0, results[3].Result.Cost, 1e-12)
	require.NoError(t, results[4].Err)
	assert.Equal(t, []uint32{2}, results[4].Result.Nodes)
}

func TestRouteBatchCancelled(t *testing.T) {
	e := buildTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := e.RouteBatch(ctx, []Query{{0, 1}, {1, 2}}, 0)
	for _, r := range results {
		assert.ErrorIs(t, r.Err, context.Canceled)
		assert.Nil(t, r.Result)
	}
}

func TestEngineConcurrentRoutes(t *testing.T) {
	e := buildTestEngine(t)
	want, err := e.Route(context.Background(), 4, 3)
	require.NoError(t, err)

	var g errgroup.Group
	for range 32 {
		g.Go(func() error {
			for range 50 {
				got, err := e.Route(context.Background(), 4, 3)
				if err != nil {
					return err
				}
				if !assert.Equal(t, want.Nodes, got.Nodes) {
					return nil
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, uint64(1+32*50), e.Stats().Routes)
}
