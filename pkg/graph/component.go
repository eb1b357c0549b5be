package graph

import "planar_router/pkg/geo"

// UnionFind implements a disjoint-set data structure with path compression
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient, max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the number of elements in the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

func unionAll(g *Graph) *UnionFind {
	uf := NewUnionFind(g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, g.Head[e])
		}
	}
	return uf
}

// Components labels every node with a dense component id in [0, count).
// Ids are assigned in order of each component's lowest node id, so the
// labelling is deterministic. Two nodes are connected iff their labels match.
func Components(g *Graph) (labels []uint32, count int) {
	if g.NumNodes == 0 {
		return nil, 0
	}

	uf := unionAll(g)

	const unassigned = ^uint32(0)
	byRoot := make([]uint32, g.NumNodes)
	for i := range byRoot {
		byRoot[i] = unassigned
	}

	labels = make([]uint32, g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		root := uf.Find(u)
		if byRoot[root] == unassigned {
			byRoot[root] = uint32(count)
			count++
		}
		labels[u] = byRoot[root]
	}
	return labels, count
}

// LargestComponent returns the node ids belonging to the largest connected
// component, in ascending order. Ties go to the component holding the lowest id.
func LargestComponent(g *Graph) []uint32 {
	if g.NumNodes == 0 {
		return nil
	}

	uf := unionAll(g)

	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < g.NumNodes; i++ {
		if size := uf.Size(i); size > bestSize {
			bestRoot = uf.Find(i)
			bestSize = size
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < g.NumNodes; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}

	return nodes
}

// FilterInput returns a new Input containing only the given nodes, renumbered
// densely in the order given, and the connections with both ends in the set.
func FilterInput(in *Input, nodes []uint32) *Input {
	if len(nodes) == 0 {
		return &Input{}
	}

	oldToNew := make(map[uint32]uint32, len(nodes))
	points := make([]geo.Point, 0, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
		points = append(points, in.Points[oldIdx])
	}

	var conns []Connection
	for _, c := range in.Connections {
		from, okFrom := oldToNew[c.From]
		to, okTo := oldToNew[c.To]
		if okFrom && okTo {
			conns = append(conns, Connection{From: from, To: to})
		}
	}

	return &Input{Points: points, Connections: conns}
}
