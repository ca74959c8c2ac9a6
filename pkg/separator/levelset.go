package separator

import (
	"context"

	"github.com/soniakeys/bits"

	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/nd"
)

// defaultSweeps bounds the pseudo-peripheral search.
const defaultSweeps = 8

// LevelSet is a breadth-first level-structure separator oracle. The zero
// value is ready to use and safe for concurrent use.
type LevelSet struct {
	// Sweeps bounds the number of breadth-first searches spent looking for
	// a pseudo-peripheral start vertex. Zero means 8.
	Sweeps int
}

var _ nd.SeparatorOracle = LevelSet{}

// levels is a breadth-first level structure.
type levels struct {
	level [][]int // vertices by distance from the root
	dist  []int   // -1 for unreached vertices
}

// FindSeparator implements [nd.SeparatorOracle].
func (ls LevelSet) FindSeparator(ctx context.Context, g *graph.Graph) (nd.Separation, error) {
	if err := ctx.Err(); err != nil {
		return nd.Separation{}, err
	}
	n := g.NodeCount()
	if n < 3 || g.NumEdges() == 0 {
		return nd.Separation{}, nd.ErrPartitionFailed
	}

	root := ls.peripheral(g)
	lv := bfs(g, root)
	depth := len(lv.level) - 1
	if depth < 2 {
		return nd.Separation{}, nd.ErrPartitionFailed
	}

	m := chooseLevel(lv, n)
	return split(g, lv, m), nil
}

// peripheral returns a pseudo-peripheral vertex: starting from the
// lowest-numbered vertex of minimum positive degree, it repeatedly moves to
// a minimum-degree vertex of the deepest level while the depth grows.
func (ls LevelSet) peripheral(g *graph.Graph) int {
	sweeps := ls.Sweeps
	if sweeps <= 0 {
		sweeps = defaultSweeps
	}
	root := -1
	for v := 0; v < g.NodeCount(); v++ {
		d := g.Degree(v)
		if d > 0 && (root < 0 || d < g.Degree(root)) {
			root = v
		}
	}

	depth := -1
	for i := 0; i < sweeps; i++ {
		lv := bfs(g, root)
		if len(lv.level)-1 <= depth {
			break
		}
		depth = len(lv.level) - 1
		last := lv.level[depth]
		next := last[0]
		for _, v := range last[1:] {
			if g.Degree(v) < g.Degree(next) || (g.Degree(v) == g.Degree(next) && v < next) {
				next = v
			}
		}
		if next == root {
			break
		}
		root = next
	}
	return root
}

func bfs(g *graph.Graph, root int) levels {
	n := g.NodeCount()
	seen := bits.New(n)
	dist := make([]int, n)
	for i := range dist {
		dist[i] = -1
	}
	seen.SetBit(root, 1)
	dist[root] = 0
	lv := levels{level: [][]int{{root}}, dist: dist}
	for {
		cur := lv.level[len(lv.level)-1]
		var next []int
		for _, v := range cur {
			for _, w := range g.Neighbors(v) {
				if seen.Bit(w) == 0 {
					seen.SetBit(w, 1)
					dist[w] = len(lv.level)
					next = append(next, w)
				}
			}
		}
		if len(next) == 0 {
			return lv
		}
		lv.level = append(lv.level, next)
	}
}

// chooseLevel picks the separator level among 1..depth-1: the smallest
// balanced level, ties going to the better balance, or the best balanced
// level overall if no level is balanced.
func chooseLevel(lv levels, n int) int {
	depth := len(lv.level) - 1
	best, bestBalanced := -1, -1
	bestImbalance, balancedImbalance := n+1, n+1
	below := len(lv.level[0])
	for m := 1; m < depth; m++ {
		size := len(lv.level[m])
		above := n - below - size
		imbalance := max(below, above) - min(below, above)
		if 4*min(below, above) >= n-size {
			if bestBalanced < 0 || size < len(lv.level[bestBalanced]) ||
				(size == len(lv.level[bestBalanced]) && imbalance < balancedImbalance) {
				bestBalanced, balancedImbalance = m, imbalance
			}
		}
		if imbalance < bestImbalance {
			best, bestImbalance = m, imbalance
		}
		below += size
	}
	if bestBalanced >= 0 {
		return bestBalanced
	}
	return best
}

// split turns level m into a separator. Near side A holds the levels before
// m; far side B holds the rest, unreached vertices included.
func split(g *graph.Graph, lv levels, m int) nd.Separation {
	n := g.NodeCount()
	const (
		inA = iota
		inSep
		inB
	)
	side := make([]int8, n)
	for v := 0; v < n; v++ {
		switch d := lv.dist[v]; {
		case d >= 0 && d < m:
			side[v] = inA
		case d == m:
			side[v] = inSep
		default:
			side[v] = inB
		}
	}
	// A separator vertex with no neighbor in B can join A.
	for _, v := range lv.level[m] {
		touchesB := false
		for _, w := range g.Neighbors(v) {
			if side[w] == inB {
				touchesB = true
				break
			}
		}
		if !touchesB {
			side[v] = inA
		}
	}

	var s nd.Separation
	for v := 0; v < n; v++ {
		switch side[v] {
		case inA:
			s.A = append(s.A, v)
		case inSep:
			s.Separator = append(s.Separator, v)
		default:
			s.B = append(s.B, v)
		}
	}
	return s
}
