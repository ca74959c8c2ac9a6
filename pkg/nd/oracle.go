package nd

import (
	"context"
	"errors"

	"github.com/matzehuels/ndorder/pkg/graph"
)

// ErrPartitionFailed is returned by a [SeparatorOracle] that cannot split a
// subgraph. The engine treats it like a rejected separator and orders the
// subgraph as a leaf. It is never returned by [Engine.Order].
var ErrPartitionFailed = errors.New("partition failed")

// Separation is a vertex separator of a graph, in the graph's local vertex
// indices. The three sets partition the vertices and no edge joins A and B.
type Separation struct {
	Separator []int
	A         []int
	B         []int
}

// SeparatorOracle finds vertex separators.
//
// FindSeparator may return [ErrPartitionFailed] (or an error wrapping it) for
// graphs it cannot split. Any other error aborts the ordering.
// Implementations must be safe for concurrent use when the engine runs with
// more than one worker.
type SeparatorOracle interface {
	FindSeparator(ctx context.Context, g *graph.Graph) (Separation, error)
}

// OracleFunc adapts a function to [SeparatorOracle].
type OracleFunc func(ctx context.Context, g *graph.Graph) (Separation, error)

// FindSeparator calls f(ctx, g).
func (f OracleFunc) FindSeparator(ctx context.Context, g *graph.Graph) (Separation, error) {
	return f(ctx, g)
}

// LeafFamily selects the minimum degree variant a [LeafOrderer] applies.
type LeafFamily int

const (
	// FamilyMinDegree orders a symmetric graph by minimum degree.
	FamilyMinDegree LeafFamily = iota
	// FamilyColumnMinDegree orders graphs derived from A*A' or A'*A.
	FamilyColumnMinDegree
)

// String returns "mindegree" or "colmindegree".
func (f LeafFamily) String() string {
	if f == FamilyColumnMinDegree {
		return "colmindegree"
	}
	return "mindegree"
}

// LeafOrderer orders small subgraphs directly.
//
// OrderLeaf returns a permutation of 0..g.NodeCount()-1 in elimination order.
// It must be deterministic and must accept empty graphs. Implementations
// must be safe for concurrent use when the engine runs with more than one
// worker.
type LeafOrderer interface {
	OrderLeaf(ctx context.Context, g *graph.Graph, family LeafFamily) ([]int, error)
}

// LeafOrdererFunc adapts a function to [LeafOrderer].
type LeafOrdererFunc func(ctx context.Context, g *graph.Graph, family LeafFamily) ([]int, error)

// OrderLeaf calls f(ctx, g, family).
func (f LeafOrdererFunc) OrderLeaf(ctx context.Context, g *graph.Graph, family LeafFamily) ([]int, error) {
	return f(ctx, g, family)
}
