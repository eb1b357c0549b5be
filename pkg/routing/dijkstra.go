package routing

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"planar_router/pkg/graph"
)

var (
	// ErrNotReachable is returned when no path connects start and goal.
	ErrNotReachable = errors.New("goal not reachable")
	// ErrInvalidNode is returned when start or goal is not a node of the graph.
	ErrInvalidNode = errors.New("invalid node")
)

// Path is a shortest route: node ids from start to goal and the summed edge length.
type Path struct {
	Nodes []uint32
	Cost  float64
}

// predKind tags a predecessor entry.
type predKind uint8

const (
	predUnset predKind = iota // never reached
	predStart                 // the search origin
	predVia                   // reached through node
)

type pred struct {
	kind predKind
	node uint32
}

// searchState is the per-query working memory of one search.
// It is allocated fresh for every query and never shared.
type searchState struct {
	dist    []float64
	settled []bool
	pred    []pred
	pq      MinHeap
}

func newSearchState(n uint32) *searchState {
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	return &searchState{
		dist:    dist,
		settled: make([]bool, n),
		pred:    make([]pred, n),
		pq:      MinHeap{items: make([]PQItem, 0, 64)},
	}
}

// ShortestPath runs Dijkstra from start and stops as soon as goal is settled.
//
// Queue entries are never decreased in place: an improved node is pushed again
// and the outdated entry is skipped when popped. A node is settled when it is
// first popped with its current best cost.
func ShortestPath(g *graph.Graph, start, goal uint32) (Path, error) {
	if !g.HasNode(start) || !g.HasNode(goal) {
		return Path{}, fmt.Errorf("%w: start=%d goal=%d, graph has %d nodes",
			ErrInvalidNode, start, goal, g.NumNodes)
	}

	s := newSearchState(g.NumNodes)
	s.dist[start] = 0
	s.pred[start] = pred{kind: predStart}
	s.pq.Push(start, 0)

	for s.pq.Len() > 0 {
		item := s.pq.Pop()
		u := item.Node

		if s.settled[u] || item.Cost > s.dist[u] {
			continue // stale entry
		}
		s.settled[u] = true

		if u == goal {
			return Path{Nodes: s.trace(goal), Cost: s.dist[goal]}, nil
		}

		first, last := g.EdgesFrom(u)
		for e := first; e < last; e++ {
			v := g.Head[e]
			if s.settled[v] {
				continue
			}
			newCost := item.Cost + g.Weight[e]
			if newCost < s.dist[v] {
				s.dist[v] = newCost
				s.pred[v] = pred{kind: predVia, node: u}
				s.pq.Push(v, newCost)
			}
		}
	}

	return Path{}, fmt.Errorf("%w: %d -> %d", ErrNotReachable, start, goal)
}

// trace walks predecessors back from goal to the start.
func (s *searchState) trace(goal uint32) []uint32 {
	nodes := []uint32{goal}
	for p := s.pred[goal]; p.kind == predVia; p = s.pred[p.node] {
		nodes = append(nodes, p.node)
	}
	slices.Reverse(nodes)
	return nodes
}
