package graph

import (
	"fmt"
	"slices"

	"github.com/soniakeys/bits"
)

// Induce returns the subgraph induced by the given local vertices of g.
// Vertex i of the result corresponds to vertices[i] of g and keeps its
// original id, so [Graph.Original] on the subgraph still reports positions in
// the graph that [Build] produced. The result is an independent copy.
//
// Induce panics if a vertex is out of range or listed twice.
func (g *Graph) Induce(vertices []int) *Graph {
	n := g.NodeCount()
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}
	ids := make([]int, len(vertices))
	for i, v := range vertices {
		if v < 0 || v >= n {
			panic(fmt.Sprintf("graph: induce vertex %d out of range [0,%d)", v, n))
		}
		if pos[v] >= 0 {
			panic(fmt.Sprintf("graph: induce vertex %d listed twice", v))
		}
		pos[v] = i
		ids[i] = g.Original(v)
	}

	sub := &Graph{ptr: make([]int, len(vertices)+1), ids: ids, mode: g.mode}
	for i, v := range vertices {
		for _, w := range g.Neighbors(v) {
			if pos[w] >= 0 {
				sub.adj = append(sub.adj, pos[w])
			}
		}
		// Local order follows the caller's vertex order, so re-sort.
		slices.Sort(sub.adj[sub.ptr[i]:])
		sub.ptr[i+1] = len(sub.adj)
	}
	sub.edges = len(sub.adj) / 2
	return sub
}

// Components returns the connected components of g as lists of local
// vertices. Components are ordered by their smallest vertex and each list is
// sorted ascending. An empty graph has no components.
func (g *Graph) Components() [][]int {
	n := g.NodeCount()
	seen := bits.New(n)
	var comps [][]int
	queue := make([]int, 0, n)
	for s := 0; s < n; s++ {
		if seen.Bit(s) == 1 {
			continue
		}
		queue = append(queue[:0], s)
		seen.SetBit(s, 1)
		for head := 0; head < len(queue); head++ {
			for _, w := range g.Neighbors(queue[head]) {
				if seen.Bit(w) == 0 {
					seen.SetBit(w, 1)
					queue = append(queue, w)
				}
			}
		}
		comp := slices.Clone(queue)
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	return comps
}

// IsConnected reports whether g has at most one connected component.
func (g *Graph) IsConnected() bool {
	n := g.NodeCount()
	if n <= 1 {
		return true
	}
	seen := bits.New(n)
	seen.SetBit(0, 1)
	stack := []int{0}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, w := range g.Neighbors(v) {
			if seen.Bit(w) == 0 {
				seen.SetBit(w, 1)
				stack = append(stack, w)
			}
		}
	}
	return seen.OnesCount() == n
}
