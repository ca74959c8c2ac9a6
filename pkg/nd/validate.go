package nd

import (
	"errors"
	"fmt"

	"github.com/soniakeys/bits"

	"github.com/matzehuels/ndorder/pkg/graph"
)

var (
	// ErrNotPermutation is returned when a slice is not a bijection on
	// 0..n-1.
	ErrNotPermutation = errors.New("not a permutation")

	// ErrBadSeparation is returned when an oracle result is not a vertex
	// separator of the graph it was asked to split.
	ErrBadSeparation = errors.New("invalid separation")
)

// CheckPermutation reports whether p is a permutation of 0..n-1.
func CheckPermutation(p []int, n int) error {
	if len(p) != n {
		return fmt.Errorf("%w: length %d, want %d", ErrNotPermutation, len(p), n)
	}
	seen := bits.New(n)
	for k, v := range p {
		if v < 0 || v >= n {
			return fmt.Errorf("%w: entry %d at position %d out of range", ErrNotPermutation, v, k)
		}
		if seen.Bit(v) == 1 {
			return fmt.Errorf("%w: entry %d repeated at position %d", ErrNotPermutation, v, k)
		}
		seen.SetBit(v, 1)
	}
	return nil
}

// Inverse returns q with q[p[k]] = k. p must be a permutation.
func Inverse(p []int) []int {
	q := make([]int, len(p))
	for k, v := range p {
		q[v] = k
	}
	return q
}

const (
	sideNone int8 = iota
	sideSep
	sideA
	sideB
)

// CheckSeparation verifies that s partitions the vertices of g and that no
// edge joins s.A and s.B.
func CheckSeparation(g *graph.Graph, s Separation) error {
	n := g.NodeCount()
	if got := len(s.Separator) + len(s.A) + len(s.B); got != n {
		return fmt.Errorf("%w: %d vertices listed for a graph of %d", ErrBadSeparation, got, n)
	}
	side := make([]int8, n)
	for _, part := range []struct {
		verts []int
		tag   int8
	}{{s.Separator, sideSep}, {s.A, sideA}, {s.B, sideB}} {
		for _, v := range part.verts {
			if v < 0 || v >= n {
				return fmt.Errorf("%w: vertex %d out of range", ErrBadSeparation, v)
			}
			if side[v] != sideNone {
				return fmt.Errorf("%w: vertex %d listed twice", ErrBadSeparation, v)
			}
			side[v] = part.tag
		}
	}
	for _, a := range s.A {
		for _, w := range g.Neighbors(a) {
			if side[w] == sideB {
				return fmt.Errorf("%w: edge %d-%d crosses the separator", ErrBadSeparation, a, w)
			}
		}
	}
	return nil
}
