package symbolic

import (
	"context"
	"fmt"

	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/nd"
)

// NoParent marks roots of the elimination tree.
const NoParent = -1

// Stats summarizes the symbolic factorization of a permuted matrix.
type Stats struct {
	N      int   `json:"n"`      // Matrix dimension
	NNZA   int   `json:"nnz_a"`  // Off-diagonal nonzeros of the lower triangle
	NNZL   int   `json:"nnz_l"`  // Nonzeros of L, diagonal included
	Fill   int   `json:"fill"`   // NNZL - NNZA - N
	Height int   `json:"height"` // Height of the elimination tree
	Flops  int64 `json:"flops"`  // Sum of squared column counts
	Roots  int   `json:"roots"`  // Elimination tree roots
}

// FillRatio returns NNZL divided by the nonzeros of the lower triangle of A,
// diagonal included. An empty matrix has ratio 1.
func (s Stats) FillRatio() float64 {
	base := s.NNZA + s.N
	if base == 0 {
		return 1
	}
	return float64(s.NNZL) / float64(base)
}

// EliminationTree returns the elimination tree of the matrix whose pattern
// is g, permuted so that perm[k] is eliminated k-th. The tree is expressed
// in positions: parent[k] is the position of the parent of the k-th
// eliminated vertex, or NoParent.
func EliminationTree(g *graph.Graph, perm []int) ([]int, error) {
	n := g.NodeCount()
	if err := nd.CheckPermutation(perm, n); err != nil {
		return nil, fmt.Errorf("elimination tree: %w", err)
	}
	pinv := nd.Inverse(perm)
	parent := make([]int, n)
	ancestor := make([]int, n)
	for k, v := range perm {
		parent[k] = NoParent
		ancestor[k] = NoParent
		for _, w := range g.Neighbors(v) {
			// Walk from an earlier position up to k, compressing the path.
			for i := pinv[w]; i != NoParent && i < k; {
				next := ancestor[i]
				ancestor[i] = k
				if next == NoParent {
					parent[i] = k
				}
				i = next
			}
		}
	}
	return parent, nil
}

// ColumnCounts returns the nonzero count of every column of L, diagonal
// included, in positions of perm. parent must be the elimination tree of
// the same permutation.
func ColumnCounts(g *graph.Graph, perm, parent []int) []int {
	n := g.NodeCount()
	pinv := nd.Inverse(perm)
	counts := make([]int, n)
	mark := make([]int, n)
	for k := range mark {
		mark[k] = NoParent
	}
	for k, v := range perm {
		counts[k]++
		mark[k] = k
		// Row k of L is the union of etree paths from each earlier
		// neighbor up to k.
		for _, w := range g.Neighbors(v) {
			for j := pinv[w]; j < k && mark[j] != k; j = parent[j] {
				mark[j] = k
				counts[j]++
			}
		}
	}
	return counts
}

// Analyze computes the symbolic statistics of eliminating g in the order
// perm. ctx is only checked before the work starts.
func Analyze(ctx context.Context, g *graph.Graph, perm []int) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	parent, err := EliminationTree(g, perm)
	if err != nil {
		return Stats{}, err
	}
	counts := ColumnCounts(g, perm, parent)

	s := Stats{N: g.NodeCount(), NNZA: g.NumEdges()}
	for _, c := range counts {
		s.NNZL += c
		s.Flops += int64(c) * int64(c)
	}
	s.Fill = s.NNZL - s.NNZA - s.N

	depth := make([]int, s.N)
	for k := s.N - 1; k >= 0; k-- {
		if p := parent[k]; p == NoParent {
			depth[k] = 1
			s.Roots++
		} else {
			depth[k] = depth[p] + 1
		}
		s.Height = max(s.Height, depth[k])
	}
	return s, nil
}
