package sparse

import (
	"errors"
	"slices"
	"testing"
)

func TestFromEntriesSortsAndMerges(t *testing.T) {
	p, err := FromEntries(3, 2, []Entry{
		{Row: 2, Col: 0},
		{Row: 0, Col: 0},
		{Row: 2, Col: 0}, // duplicate
		{Row: 1, Col: 1},
	})
	if err != nil {
		t.Fatalf("FromEntries: %v", err)
	}
	if p.NNZ() != 3 {
		t.Errorf("NNZ() = %d, want 3", p.NNZ())
	}
	if got := p.Column(0); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("Column(0) = %v, want [0 2]", got)
	}
	if got := p.Column(1); !slices.Equal(got, []int{1}) {
		t.Errorf("Column(1) = %v, want [1]", got)
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestFromEntriesErrors(t *testing.T) {
	if _, err := FromEntries(-1, 2, nil); !errors.Is(err, ErrInvalidDimension) {
		t.Errorf("negative rows: err = %v, want ErrInvalidDimension", err)
	}
	if _, err := FromEntries(2, 2, []Entry{{Row: 2, Col: 0}}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("row out of range: err = %v, want ErrIndexOutOfRange", err)
	}
	if _, err := FromEntries(2, 2, []Entry{{Row: 0, Col: -1}}); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("col out of range: err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestTranspose(t *testing.T) {
	p, _ := FromEntries(2, 3, []Entry{
		{Row: 0, Col: 0},
		{Row: 1, Col: 0},
		{Row: 1, Col: 2},
	})
	tp := p.Transpose()

	if tp.NRow != 3 || tp.NCol != 2 {
		t.Fatalf("Transpose dims = %dx%d, want 3x2", tp.NRow, tp.NCol)
	}
	if err := tp.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	for _, e := range p.Entries() {
		if !tp.Has(e.Col, e.Row) {
			t.Errorf("transpose missing (%d,%d)", e.Col, e.Row)
		}
	}
	if tp.NNZ() != p.NNZ() {
		t.Errorf("NNZ = %d, want %d", tp.NNZ(), p.NNZ())
	}
	back := tp.Transpose()
	if !slices.Equal(back.ColPtr, p.ColPtr) || !slices.Equal(back.RowIdx, p.RowIdx) {
		t.Error("double transpose should reproduce the pattern")
	}
}

func TestIdentity(t *testing.T) {
	p := Identity(4)
	if !p.IsSquare() || p.NNZ() != 4 {
		t.Fatalf("Identity(4): %dx%d nnz=%d", p.NRow, p.NCol, p.NNZ())
	}
	for i := 0; i < 4; i++ {
		if !p.Has(i, i) {
			t.Errorf("Identity missing diagonal %d", i)
		}
	}
	if empty := Identity(0); empty.NNZ() != 0 || empty.NCol != 0 {
		t.Error("Identity(0) should be empty")
	}
}

func TestValidateRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		p    Pattern
		want error
	}{
		{"short colptr", Pattern{NRow: 2, NCol: 2, ColPtr: []int{0, 0}}, ErrMalformed},
		{"unsorted", Pattern{NRow: 2, NCol: 1, ColPtr: []int{0, 2}, RowIdx: []int{1, 0}}, ErrMalformed},
		{"duplicate", Pattern{NRow: 2, NCol: 1, ColPtr: []int{0, 2}, RowIdx: []int{1, 1}}, ErrMalformed},
		{"row out of range", Pattern{NRow: 1, NCol: 1, ColPtr: []int{0, 1}, RowIdx: []int{3}}, ErrIndexOutOfRange},
		{"negative dims", Pattern{NRow: -1, NCol: 0, ColPtr: []int{0}}, ErrInvalidDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	var zero Pattern
	zero.ColPtr = []int{0}
	if err := zero.Validate(); err != nil {
		t.Errorf("empty pattern should validate: %v", err)
	}
}
