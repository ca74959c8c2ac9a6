// Package graph provides the undirected adjacency graph of a sparse matrix
// pattern, the structure nested dissection operates on.
//
// # Overview
//
// A fill-reducing ordering only depends on which entries of a matrix are
// nonzero. This package turns a [sparse.Pattern] into a simple undirected
// graph: no self-loops, no parallel edges, sorted neighbor lists. The graph
// is stored in compressed form and is immutable after construction.
//
// # Modes
//
// [Build] supports three ways of reading a pattern:
//
//   - [Symmetric]: vertices are rows of a square A, edges come from tril(A)
//   - [Row]: vertices are rows of A, edges are the off-diagonal of A*A'
//   - [Column]: vertices are columns of A, edges are the off-diagonal of A'*A
//
// [ParseMode] accepts the selectors "sym", "row" and "col" by first letter.
//
// # Subgraphs
//
// [Graph.Induce] copies the subgraph on a vertex subset. Induced graphs are
// numbered locally but keep the original vertex ids, so the dissection engine
// can recurse on copies and still report results in terms of the input
// matrix. [Graph.Components] splits a graph into connected components ordered
// by smallest vertex.
//
// # Concurrency
//
// A built Graph is read-only and may be shared between goroutines.
package graph
