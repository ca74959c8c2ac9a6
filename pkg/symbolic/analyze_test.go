package symbolic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/mindegree"
	"github.com/matzehuels/ndorder/pkg/nd"
	"github.com/matzehuels/ndorder/pkg/separator"
)

func star(t *testing.T, n int) *graph.Graph {
	t.Helper()
	var edges [][2]int
	for v := 1; v < n; v++ {
		edges = append(edges, [2]int{0, v})
	}
	g, err := graph.New(n, edges)
	require.NoError(t, err)
	return g
}

func grid(t *testing.T, k int) *graph.Graph {
	t.Helper()
	var edges [][2]int
	for r := 0; r < k; r++ {
		for c := 0; c < k; c++ {
			v := r*k + c
			if c+1 < k {
				edges = append(edges, [2]int{v, v + 1})
			}
			if r+1 < k {
				edges = append(edges, [2]int{v, v + k})
			}
		}
	}
	g, err := graph.New(k*k, edges)
	require.NoError(t, err)
	return g
}

func TestEliminationTreePath(t *testing.T) {
	g, err := graph.New(4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	require.NoError(t, err)
	parent, err := EliminationTree(g, []int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, NoParent}, parent)

	// Eliminating the middle first joins its neighbors.
	parent, err = EliminationTree(g, []int{1, 0, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, NoParent}, parent)
}

func TestEliminationTreeRejectsBadPermutation(t *testing.T) {
	g := star(t, 3)
	_, err := EliminationTree(g, []int{0, 0, 1})
	assert.ErrorIs(t, err, nd.ErrNotPermutation)
}

func TestAnalyzeStar(t *testing.T) {
	g := star(t, 5)

	// Center last: no fill.
	s, err := Analyze(context.Background(), g, []int{1, 2, 3, 4, 0})
	require.NoError(t, err)
	assert.Equal(t, 5, s.N)
	assert.Equal(t, 4, s.NNZA)
	assert.Equal(t, 9, s.NNZL)
	assert.Equal(t, 0, s.Fill)
	assert.Equal(t, 2, s.Height)
	assert.Equal(t, 1, s.Roots)
	assert.InDelta(t, 1.0, s.FillRatio(), 1e-12)

	// Center first: L is dense.
	s, err = Analyze(context.Background(), g, []int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 15, s.NNZL)
	assert.Equal(t, 6, s.Fill)
	assert.Equal(t, 5, s.Height)
	assert.Equal(t, int64(25+16+9+4+1), s.Flops)
}

func TestAnalyzeForest(t *testing.T) {
	g, err := graph.New(4, [][2]int{{0, 1}})
	require.NoError(t, err)
	s, err := Analyze(context.Background(), g, []int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Roots)
	assert.Equal(t, 5, s.NNZL)
}

func TestAnalyzeEmpty(t *testing.T) {
	g, err := graph.New(0, nil)
	require.NoError(t, err)
	s, err := Analyze(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, s)
	assert.Equal(t, 1.0, s.FillRatio())
}

func TestNestedDissectionReducesGridFill(t *testing.T) {
	g := grid(t, 15)
	natural := make([]int, g.NodeCount())
	for i := range natural {
		natural[i] = i
	}
	base, err := Analyze(context.Background(), g, natural)
	require.NoError(t, err)

	opts := nd.DefaultOptions()
	opts.SmallThreshold = 8
	res, err := nd.NewEngine(separator.LevelSet{}, mindegree.Orderer{}).Order(context.Background(), g, opts)
	require.NoError(t, err)
	ordered, err := Analyze(context.Background(), g, res.Perm)
	require.NoError(t, err)

	assert.Less(t, ordered.NNZL, base.NNZL)
}
