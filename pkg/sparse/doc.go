// Package sparse provides the nonzero pattern of a sparse matrix.
//
// A [Pattern] stores only structure, in compressed-column form, because a
// fill-reducing ordering never looks at numeric values. Patterns are built
// from coordinate lists with [FromEntries], transposed with
// [Pattern.Transpose], and consumed by the graph package to derive the
// adjacency graph that nested dissection partitions.
//
// Indices are 0-based throughout. Readers for 1-based file formats (Matrix
// Market) live in the io package and convert on input.
package sparse
