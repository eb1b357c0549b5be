package graph

import "planar_router/pkg/geo"

// Connection is an undirected link between two nodes, as read from a map source.
type Connection struct {
	From uint32
	To   uint32
}

// Input is the raw material a graph is built from: one coordinate per node
// (the node id is its position) and a list of undirected connections.
type Input struct {
	Points      []geo.Point
	Connections []Connection
}

// Coordinates holds one point per node, indexed by node id.
type Coordinates []geo.Point

// Len returns the number of nodes.
func (c Coordinates) Len() int { return len(c) }

// At returns the coordinate of node u.
func (c Coordinates) At(u uint32) geo.Point { return c[u] }

// Edge is a half-edge leaving a node.
type Edge struct {
	To     uint32
	Weight float64
}

// Graph is an undirected graph stored as a symmetric directed graph in
// CSR (Compressed Sparse Row) format. Every connection (u, v) appears as the
// two half-edges u->v and v->u with the same weight.
//
// A Graph is never modified after Build and may be shared by any number of
// concurrent readers.
type Graph struct {
	NumNodes uint32
	NumEdges uint32    // number of half-edges, twice the number of connections
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	Weight   []float64 // len: NumEdges; Euclidean length of the edge
	Coords   Coordinates
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// Edges returns a copy of the half-edges leaving u.
func (g *Graph) Edges(u uint32) []Edge {
	start, end := g.EdgesFrom(u)
	edges := make([]Edge, 0, end-start)
	for e := start; e < end; e++ {
		edges = append(edges, Edge{To: g.Head[e], Weight: g.Weight[e]})
	}
	return edges
}

// HasNode reports whether u is a valid node id.
func (g *Graph) HasNode(u uint32) bool {
	return u < g.NumNodes
}
