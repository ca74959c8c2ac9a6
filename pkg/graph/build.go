package graph

import (
	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/sparse"
)

// Build derives the adjacency graph of a sparse pattern.
//
// In [Symmetric] mode the pattern must be square and only the strict lower
// triangle is read; the upper triangle and diagonal are ignored. In [Row]
// mode vertices are rows and two rows are adjacent when they share a column.
// [Column] mode transposes the pattern and then proceeds as in Row mode, so
// vertices are columns adjacent when they share a row.
//
// The pattern is not modified. Diagonal entries never produce self-loops and
// repeated structure never produces parallel edges.
//
// Returns INVALID_SHAPE when Symmetric mode is given a non-square pattern and
// UNRECOGNIZED_MODE when mode is not one of the three modes.
func Build(p *sparse.Pattern, mode Mode) (*Graph, error) {
	if !mode.Valid() {
		return nil, errs.New(errs.ErrCodeUnrecognizedMode, "unrecognized mode %d", int(mode))
	}
	if p == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "nil pattern")
	}
	switch mode {
	case Symmetric:
		if !p.IsSquare() {
			return nil, errs.New(errs.ErrCodeInvalidShape, "symmetric mode requires a square matrix, got %dx%d", p.NRow, p.NCol)
		}
		return buildLower(p), nil
	case Row:
		return buildRowProduct(p, Row), nil
	default:
		return buildRowProduct(p.Transpose(), Column), nil
	}
}

// buildLower mirrors the strict lower triangle of a square pattern.
func buildLower(p *sparse.Pattern) *Graph {
	lists := make([][]int, p.NCol)
	for j := 0; j < p.NCol; j++ {
		for _, i := range p.Column(j) {
			if i > j {
				lists[i] = append(lists[i], j)
				lists[j] = append(lists[j], i)
			}
		}
	}
	return fromLists(lists, nil, Symmetric)
}

// buildRowProduct computes the off-diagonal pattern of p*p'. The mark slice
// records the last row that reached each candidate neighbor so every
// neighbor is appended once.
func buildRowProduct(p *sparse.Pattern, mode Mode) *Graph {
	rows := p.Transpose() // column i of rows lists the columns of row i
	n := p.NRow
	lists := make([][]int, n)
	mark := make([]int, n)
	for i := range mark {
		mark[i] = -1
	}
	for i := 0; i < n; i++ {
		mark[i] = i
		for _, j := range rows.Column(i) {
			for _, k := range p.Column(j) {
				if mark[k] != i {
					mark[k] = i
					lists[i] = append(lists[i], k)
				}
			}
		}
	}
	return fromLists(lists, nil, mode)
}
