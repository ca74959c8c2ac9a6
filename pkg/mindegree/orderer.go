package mindegree

import (
	"container/heap"
	"context"
	"fmt"
	"slices"

	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/nd"
)

// checkEvery is how many eliminations pass between context checks.
const checkEvery = 256

// Orderer is a minimum degree leaf orderer. The zero value is ready to use
// and safe for concurrent use.
type Orderer struct{}

var _ nd.LeafOrderer = Orderer{}

// OrderLeaf implements [nd.LeafOrderer].
func (Orderer) OrderLeaf(ctx context.Context, g *graph.Graph, family nd.LeafFamily) ([]int, error) {
	return Order(ctx, g, family)
}

// Order returns a minimum degree elimination order of g's local vertices.
func Order(ctx context.Context, g *graph.Graph, family nd.LeafFamily) ([]int, error) {
	n := g.NodeCount()
	adj := make([]map[int]struct{}, n)
	key := make([]int, n)
	h := make(entryHeap, 0, n)
	for v := 0; v < n; v++ {
		adj[v] = make(map[int]struct{}, g.Degree(v))
		for _, w := range g.Neighbors(v) {
			adj[v][w] = struct{}{}
		}
		key[v] = g.Degree(v)
		h = append(h, entry{key: key[v], v: v})
	}
	heap.Init(&h)

	done := make([]bool, n)
	order := make([]int, 0, n)
	for h.Len() > 0 {
		if len(order)%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("minimum degree: %w", err)
			}
		}
		e := heap.Pop(&h).(entry)
		if done[e.v] || e.key != key[e.v] {
			continue // stale
		}
		p := e.v
		done[p] = true
		order = append(order, p)

		nbrs := make([]int, 0, len(adj[p]))
		for w := range adj[p] {
			nbrs = append(nbrs, w)
		}
		slices.Sort(nbrs)
		remaining := n - len(order)

		for _, i := range nbrs {
			delete(adj[i], p)
			for _, j := range nbrs {
				if j != i {
					adj[i][j] = struct{}{}
				}
			}
			var k int
			if family == nd.FamilyColumnMinDegree {
				k = min(remaining-1, key[i]+len(nbrs)-2)
			} else {
				k = len(adj[i])
			}
			if k != key[i] {
				key[i] = k
				heap.Push(&h, entry{key: k, v: i})
			}
		}
		adj[p] = nil
	}
	return order, nil
}

type entry struct {
	key int
	v   int
}

// entryHeap orders entries by key, then by vertex.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].key != h[j].key {
		return h[i].key < h[j].key
	}
	return h[i].v < h[j].v
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	e := old[len(old)-1]
	*h = old[:len(old)-1]
	return e
}
