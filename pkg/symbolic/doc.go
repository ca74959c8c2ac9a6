// Package symbolic measures how well an ordering reduces fill.
//
// Given a graph and an elimination order, [Analyze] computes the elimination
// tree of the permuted matrix and the nonzero count of its Cholesky factor L
// without any numeric work. The difference between nnz(L) and the nonzeros
// of the lower triangle of the permuted matrix is the fill an ordering
// causes, which makes it the natural metric for comparing orderings.
package symbolic
