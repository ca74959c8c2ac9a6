// Package io reads sparse matrix patterns and reads and writes orderings.
//
// # Matrix Formats
//
// Two input formats are supported. Matrix Market coordinate files (.mtx)
// are the interchange format of sparse matrix collections; values are
// ignored and symmetric, skew and Hermitian storage is expanded to both
// triangles. The JSON pattern lists 0-based entries:
//
//	{
//	  "nrow": 3,
//	  "ncol": 3,
//	  "entries": [[0, 0], [1, 0], [2, 1]]
//	}
//
// [ImportMatrix] picks the format from the file extension. [ReadMatrixMarket]
// and [ReadMatrixJSON] read from any io.Reader.
//
// # Orderings
//
// [Ordering] is the JSON document for a computed ordering: permutation,
// separator tree, membership and statistics. It can be written 0-based or
// 1-based; [Ordering.Result] restores an [nd.Result] from either.
//
// # Errors
//
// Malformed input yields INVALID_FORMAT errors, missing files
// FILE_NOT_FOUND and unsupported Matrix Market variants UNSUPPORTED, all
// from package errors. The line number is included where it is known.
package io
