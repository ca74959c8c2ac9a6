package graph

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrVertexOutOfRange is returned when an edge or vertex list references
	// a vertex outside 0..n-1.
	ErrVertexOutOfRange = errors.New("vertex out of range")

	// ErrNotSimple is returned by [Graph.Validate] when the adjacency has a
	// self-loop, a duplicate edge or an asymmetric entry.
	ErrNotSimple = errors.New("graph is not simple and undirected")
)

// Graph is an undirected simple graph in compressed adjacency form.
// Neighbor lists are sorted ascending. A Graph is immutable once built and
// safe for concurrent readers.
//
// Graphs produced by [Graph.Induce] number their vertices locally 0..k-1 and
// remember the original vertex id of each local vertex; see [Graph.Original]
// and [Graph.Vertices].
type Graph struct {
	ptr   []int // Vertex v's neighbors are adj[ptr[v]:ptr[v+1]]
	adj   []int
	ids   []int // Local vertex -> original vertex id; nil means identity
	mode  Mode
	edges int
}

// New builds a graph with n vertices from an edge list. Self-loops are
// dropped and duplicate edges (in either orientation) are merged. The
// resulting graph reports [Symmetric] as its mode.
//
// Returns ErrVertexOutOfRange if an edge endpoint is outside 0..n-1.
func New(n int, edges [][2]int) (*Graph, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative vertex count %d", ErrVertexOutOfRange, n)
	}
	lists := make([][]int, n)
	for _, e := range edges {
		u, v := e[0], e[1]
		if u < 0 || u >= n || v < 0 || v >= n {
			return nil, fmt.Errorf("%w: edge (%d,%d) with n=%d", ErrVertexOutOfRange, u, v, n)
		}
		if u == v {
			continue
		}
		lists[u] = append(lists[u], v)
		lists[v] = append(lists[v], u)
	}
	return fromLists(lists, nil, Symmetric), nil
}

// fromLists compresses adjacency lists, sorting and de-duplicating each one.
// The lists are consumed.
func fromLists(lists [][]int, ids []int, mode Mode) *Graph {
	g := &Graph{ptr: make([]int, len(lists)+1), ids: ids, mode: mode}
	total := 0
	for v, l := range lists {
		slices.Sort(l)
		l = slices.Compact(l)
		lists[v] = l
		total += len(l)
	}
	g.adj = make([]int, 0, total)
	for v, l := range lists {
		g.adj = append(g.adj, l...)
		g.ptr[v+1] = len(g.adj)
	}
	g.edges = total / 2
	return g
}

// NodeCount returns the number of vertices.
func (g *Graph) NodeCount() int { return len(g.ptr) - 1 }

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int { return g.edges }

// Mode returns the derivation mode of the graph. Induced subgraphs inherit
// the mode of their parent.
func (g *Graph) Mode() Mode { return g.mode }

// Neighbors returns the sorted neighbors of v. The returned slice aliases
// the graph and must not be modified.
func (g *Graph) Neighbors(v int) []int { return g.adj[g.ptr[v]:g.ptr[v+1]] }

// Degree returns the number of neighbors of v.
func (g *Graph) Degree(v int) int { return g.ptr[v+1] - g.ptr[v] }

// HasEdge reports whether u and v are adjacent.
func (g *Graph) HasEdge(u, v int) bool {
	_, found := slices.BinarySearch(g.Neighbors(u), v)
	return found
}

// Original returns the original vertex id of local vertex v.
func (g *Graph) Original(v int) int {
	if g.ids == nil {
		return v
	}
	return g.ids[v]
}

// Vertices returns the original vertex ids of all local vertices, in local
// order. The result is a fresh slice.
func (g *Graph) Vertices() []int {
	if g.ids == nil {
		out := make([]int, g.NodeCount())
		for i := range out {
			out[i] = i
		}
		return out
	}
	return slices.Clone(g.ids)
}

// OriginalsOf maps a list of local vertices to original vertex ids.
func (g *Graph) OriginalsOf(local []int) []int {
	out := make([]int, len(local))
	for i, v := range local {
		out[i] = g.Original(v)
	}
	return out
}

// Edges returns every edge once as a (u, v) pair with u < v, in increasing
// order of u then v.
func (g *Graph) Edges() [][2]int {
	out := make([][2]int, 0, g.edges)
	for u := 0; u < g.NodeCount(); u++ {
		for _, v := range g.Neighbors(u) {
			if u < v {
				out = append(out, [2]int{u, v})
			}
		}
	}
	return out
}

// Validate checks that the adjacency is symmetric, sorted, free of
// self-loops and duplicates, and that every neighbor is in range.
func (g *Graph) Validate() error {
	n := g.NodeCount()
	for u := 0; u < n; u++ {
		prev := -1
		for _, v := range g.Neighbors(u) {
			if v < 0 || v >= n {
				return fmt.Errorf("%w: neighbor %d of %d", ErrVertexOutOfRange, v, u)
			}
			if v == u {
				return fmt.Errorf("%w: self-loop at %d", ErrNotSimple, u)
			}
			if v <= prev {
				return fmt.Errorf("%w: neighbors of %d not strictly increasing", ErrNotSimple, u)
			}
			if !g.HasEdge(v, u) {
				return fmt.Errorf("%w: edge %d-%d has no mirror", ErrNotSimple, u, v)
			}
			prev = v
		}
	}
	return nil
}
