package sparse

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidDimension is returned when a pattern has a negative row or
	// column count.
	ErrInvalidDimension = errors.New("invalid matrix dimension")

	// ErrIndexOutOfRange is returned when an entry references a row or column
	// outside the matrix.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrMalformed is returned by [Pattern.Validate] when the compressed
	// arrays are inconsistent (wrong length, decreasing pointers, unsorted or
	// duplicate row indices).
	ErrMalformed = errors.New("malformed pattern")
)

// Entry is a single nonzero position of a matrix, using 0-based indices.
type Entry struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Pattern is the nonzero structure of an NRow-by-NCol sparse matrix in
// compressed-column form. Row indices within a column are sorted and unique.
// Values are never stored: ordering only depends on structure.
//
// The zero value is an empty 0x0 pattern. Patterns built by [FromEntries] or
// [Pattern.Transpose] are valid and should be treated as immutable.
type Pattern struct {
	NRow   int   // Number of rows
	NCol   int   // Number of columns
	ColPtr []int // Column j occupies RowIdx[ColPtr[j]:ColPtr[j+1]]; len NCol+1
	RowIdx []int // Row indices, sorted within each column
}

// FromEntries builds a pattern from a list of (row, col) positions.
// Duplicate entries are merged. The input slice is not modified.
//
// Returns ErrInvalidDimension for negative sizes and ErrIndexOutOfRange for
// entries outside the matrix.
func FromEntries(nrow, ncol int, entries []Entry) (*Pattern, error) {
	if nrow < 0 || ncol < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, nrow, ncol)
	}
	counts := make([]int, ncol+1)
	for _, e := range entries {
		if e.Row < 0 || e.Row >= nrow || e.Col < 0 || e.Col >= ncol {
			return nil, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrIndexOutOfRange, e.Row, e.Col, nrow, ncol)
		}
		counts[e.Col+1]++
	}
	for j := 0; j < ncol; j++ {
		counts[j+1] += counts[j]
	}

	rows := make([]int, len(entries))
	next := slices.Clone(counts[:ncol])
	for _, e := range entries {
		rows[next[e.Col]] = e.Row
		next[e.Col]++
	}

	// Sort and compact each column in place, then squeeze out the gaps.
	p := &Pattern{NRow: nrow, NCol: ncol, ColPtr: make([]int, ncol+1)}
	out := 0
	for j := 0; j < ncol; j++ {
		col := rows[counts[j]:counts[j+1]]
		slices.Sort(col)
		col = slices.Compact(col)
		out += copy(rows[out:], col)
		p.ColPtr[j+1] = out
	}
	p.RowIdx = rows[:out:out]
	return p, nil
}

// Identity returns the pattern of the n-by-n identity matrix.
func Identity(n int) *Pattern {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{Row: i, Col: i}
	}
	p, _ := FromEntries(n, n, entries)
	return p
}

// NNZ returns the number of stored entries.
func (p *Pattern) NNZ() int { return len(p.RowIdx) }

// IsSquare reports whether the pattern has as many rows as columns.
func (p *Pattern) IsSquare() bool { return p.NRow == p.NCol }

// Column returns the sorted row indices of column j. The returned slice
// aliases the pattern and must not be modified.
func (p *Pattern) Column(j int) []int {
	return p.RowIdx[p.ColPtr[j]:p.ColPtr[j+1]]
}

// Has reports whether position (i, j) is stored.
func (p *Pattern) Has(i, j int) bool {
	if j < 0 || j >= p.NCol {
		return false
	}
	_, found := slices.BinarySearch(p.Column(j), i)
	return found
}

// Entries returns all stored positions in column-major order.
func (p *Pattern) Entries() []Entry {
	out := make([]Entry, 0, p.NNZ())
	for j := 0; j < p.NCol; j++ {
		for _, i := range p.Column(j) {
			out = append(out, Entry{Row: i, Col: j})
		}
	}
	return out
}

// Transpose returns the pattern of the transposed matrix. Row indices of the
// result are sorted because columns of p are visited in increasing order.
func (p *Pattern) Transpose() *Pattern {
	t := &Pattern{
		NRow:   p.NCol,
		NCol:   p.NRow,
		ColPtr: make([]int, p.NRow+1),
		RowIdx: make([]int, p.NNZ()),
	}
	for _, i := range p.RowIdx {
		t.ColPtr[i+1]++
	}
	for i := 0; i < p.NRow; i++ {
		t.ColPtr[i+1] += t.ColPtr[i]
	}
	next := slices.Clone(t.ColPtr[:p.NRow])
	for j := 0; j < p.NCol; j++ {
		for _, i := range p.Column(j) {
			t.RowIdx[next[i]] = j
			next[i]++
		}
	}
	return t
}

// Validate checks the structural invariants of the compressed arrays.
// Patterns read from untrusted sources should be validated before use.
func (p *Pattern) Validate() error {
	if p.NRow < 0 || p.NCol < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, p.NRow, p.NCol)
	}
	if len(p.ColPtr) != p.NCol+1 {
		return fmt.Errorf("%w: column pointer length %d, want %d", ErrMalformed, len(p.ColPtr), p.NCol+1)
	}
	if p.ColPtr[0] != 0 || p.ColPtr[p.NCol] != len(p.RowIdx) {
		return fmt.Errorf("%w: column pointers do not span row indices", ErrMalformed)
	}
	for j := 0; j < p.NCol; j++ {
		if p.ColPtr[j] > p.ColPtr[j+1] {
			return fmt.Errorf("%w: column pointer decreases at %d", ErrMalformed, j)
		}
		prev := -1
		for _, i := range p.Column(j) {
			if i < 0 || i >= p.NRow {
				return fmt.Errorf("%w: row %d in column %d", ErrIndexOutOfRange, i, j)
			}
			if i <= prev {
				return fmt.Errorf("%w: column %d not strictly increasing", ErrMalformed, j)
			}
			prev = i
		}
	}
	return nil
}
