package routing

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"planar_router/pkg/geo"
	"planar_router/pkg/graph"
	"planar_router/pkg/guidance"
)

// RouteResult is the output of a route query.
type RouteResult struct {
	Nodes    []uint32
	Cost     float64
	Turns    []guidance.Turn
	Geometry orb.LineString
}

// GeoJSON returns the route as a feature collection: one LineString with the
// total cost, then one Point per node carrying its instruction. A route of a
// single node has no LineString.
func (r *RouteResult) GeoJSON() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	if len(r.Geometry) >= 2 {
		line := geojson.NewFeature(r.Geometry)
		line.Properties["cost"] = r.Cost
		line.Properties["nodes"] = r.Nodes
		fc.Append(line)
	}

	for i, p := range r.Geometry {
		f := geojson.NewFeature(p)
		f.Properties["node"] = r.Nodes[i]
		f.Properties["instruction"] = r.Turns[i].String()
		fc.Append(f)
	}
	return fc
}

// Stats describes the loaded graph and the queries served so far.
type Stats struct {
	Nodes       uint32     `json:"nodes"`
	Connections uint32     `json:"connections"`
	Components  int        `json:"components"`
	Bound       [4]float64 `json:"bbox"` // min x, min y, max x, max y
	Routes      uint64     `json:"routes"`
	Failures    uint64     `json:"failures"`
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, goal uint32) (*RouteResult, error)
	Nearest(p geo.Point) (SnapResult, error)
	Stats() Stats
}

// Engine implements Router with plain Dijkstra over an immutable graph.
// It is safe for concurrent use.
type Engine struct {
	g          *graph.Graph
	labels     []uint32 // connected component per node
	components int
	bound      orb.Bound
	snapper    *Snapper
	log        *zap.Logger

	routes   atomic.Uint64
	failures atomic.Uint64
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	snapRadius float64
}

// WithSnapRadius sets the maximum snapping distance used by Nearest.
// A radius <= 0 snaps to the nearest node at any distance.
func WithSnapRadius(r float64) EngineOption {
	return func(c *engineConfig) { c.snapRadius = r }
}

// NewEngine prepares a routing engine for g.
func NewEngine(g *graph.Graph, log *zap.Logger, opts ...EngineOption) *Engine {
	cfg := engineConfig{snapRadius: DefaultSnapRadius}
	for _, opt := range opts {
		opt(&cfg)
	}

	t0 := time.Now()
	labels, count := graph.Components(g)
	snapper := NewSnapper(g, cfg.snapRadius)

	log.Info("routing engine ready",
		zap.Uint32("nodes", g.NumNodes),
		zap.Uint32("connections", g.NumEdges/2),
		zap.Int("components", count),
		zap.Float64("snap_radius", snapper.Radius()),
		zap.Duration("elapsed", time.Since(t0)),
	)

	return &Engine{
		g:          g,
		labels:     labels,
		components: count,
		bound:      geo.Bound(g.Coords),
		snapper:    snapper,
		log:        log,
	}
}

// Route computes the shortest route from start to goal with its instructions.
func (e *Engine) Route(ctx context.Context, start, goal uint32) (*RouteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res, err := e.route(start, goal)
	if err != nil {
		e.failures.Add(1)
		e.log.Debug("route failed", zap.Uint32("start", start), zap.Uint32("goal", goal), zap.Error(err))
		return nil, err
	}
	e.routes.Add(1)
	return res, nil
}

func (e *Engine) route(start, goal uint32) (*RouteResult, error) {
	if !e.g.HasNode(start) || !e.g.HasNode(goal) {
		return nil, fmt.Errorf("%w: start=%d goal=%d, graph has %d nodes",
			ErrInvalidNode, start, goal, e.g.NumNodes)
	}
	// Different components: no search needed.
	if e.labels[start] != e.labels[goal] {
		return nil, fmt.Errorf("%w: %d -> %d", ErrNotReachable, start, goal)
	}

	path, err := ShortestPath(e.g, start, goal)
	if err != nil {
		return nil, err
	}

	geom := make(orb.LineString, len(path.Nodes))
	for i, u := range path.Nodes {
		geom[i] = e.g.Coords.At(u)
	}

	return &RouteResult{
		Nodes:    path.Nodes,
		Cost:     path.Cost,
		Turns:    guidance.Annotate(path.Nodes, e.g.Coords),
		Geometry: geom,
	}, nil
}

// Nearest snaps p to the closest node within the snap radius.
func (e *Engine) Nearest(p geo.Point) (SnapResult, error) {
	return e.snapper.Snap(p)
}

// Stats reports graph size and query counters.
func (e *Engine) Stats() Stats {
	return Stats{
		Nodes:       e.g.NumNodes,
		Connections: e.g.NumEdges / 2,
		Components:  e.components,
		Bound:       [4]float64{e.bound.Min[0], e.bound.Min[1], e.bound.Max[0], e.bound.Max[1]},
		Routes:      e.routes.Load(),
		Failures:    e.failures.Load(),
	}
}
