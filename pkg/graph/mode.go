package graph

import (
	"strings"

	errs "github.com/matzehuels/ndorder/pkg/errors"
)

// Mode selects how the adjacency graph is derived from a matrix pattern.
type Mode int

const (
	// Symmetric uses tril(A): vertices are rows of a square A and edges are
	// the strict lower triangle mirrored. Entries above the diagonal are
	// ignored.
	Symmetric Mode = iota
	// Row orders A*A': vertices are rows of A, adjacent when they share a
	// column.
	Row
	// Column orders A'*A: vertices are columns of A, adjacent when they share
	// a row.
	Column
)

// String returns the short name of the mode ("sym", "row" or "col").
func (m Mode) String() string {
	switch m {
	case Symmetric:
		return "sym"
	case Row:
		return "row"
	case Column:
		return "col"
	}
	return "unknown"
}

// Valid reports whether m is one of the recognized modes.
func (m Mode) Valid() bool { return m >= Symmetric && m <= Column }

// RequiresSquare reports whether the mode needs a square input matrix.
func (m Mode) RequiresSquare() bool { return m == Symmetric }

// ParseMode converts a mode selector to a Mode. Only the first letter is
// significant and it is matched case-insensitively, so "sym", "Symmetric"
// and "s" all select [Symmetric]. An empty selector stands for an absent
// one and defaults to Symmetric; the CLI rejects an explicit empty --mode.
//
// Returns an UNRECOGNIZED_MODE error for anything else.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Symmetric, nil
	}
	switch strings.ToLower(s[:1]) {
	case "s":
		return Symmetric, nil
	case "r":
		return Row, nil
	case "c":
		return Column, nil
	}
	return 0, errs.New(errs.ErrCodeUnrecognizedMode, "unrecognized mode %q (must be one of: sym, row, col)", s)
}
