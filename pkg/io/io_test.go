package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/nd"
	"github.com/matzehuels/ndorder/pkg/sparse"
)

const arrowMTX = `%%MatrixMarket matrix coordinate real symmetric
% lower triangle of a 4x4 arrow matrix
4 4 7
1 1 4.0
2 2 4.0
3 3 4.0
4 4 4.0
4 1 -1.0
4 2 -1.0
4 3 -1.0
`

func TestReadMatrixMarketSymmetric(t *testing.T) {
	p, err := ReadMatrixMarket(strings.NewReader(arrowMTX))
	if err != nil {
		t.Fatalf("ReadMatrixMarket: %v", err)
	}
	if p.NRow != 4 || p.NCol != 4 {
		t.Fatalf("size = %dx%d, want 4x4", p.NRow, p.NCol)
	}
	// 4 diagonal entries plus 3 off-diagonal entries mirrored.
	if p.NNZ() != 10 {
		t.Errorf("NNZ() = %d, want 10", p.NNZ())
	}
	if !p.Has(0, 3) || !p.Has(3, 0) {
		t.Error("symmetric entry (4,1) should be mirrored")
	}
}

func TestReadMatrixMarketGeneralPattern(t *testing.T) {
	in := "%%MatrixMarket matrix coordinate pattern general\n2 3 2\n1 3\n2 1\n"
	p, err := ReadMatrixMarket(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadMatrixMarket: %v", err)
	}
	want := []sparse.Entry{{Row: 1, Col: 0}, {Row: 0, Col: 2}}
	if got := p.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestReadMatrixMarketErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		code errs.Code
	}{
		{"empty", "", errs.ErrCodeInvalidFormat},
		{"no banner", "2 2 1\n1 1\n", errs.ErrCodeInvalidFormat},
		{"array format", "%%MatrixMarket matrix array real general\n2 2\n", errs.ErrCodeUnsupported},
		{"bad symmetry", "%%MatrixMarket matrix coordinate real upper\n1 1 0\n", errs.ErrCodeInvalidFormat},
		{"missing size", "%%MatrixMarket matrix coordinate real general\n% only comments\n", errs.ErrCodeInvalidFormat},
		{"short size", "%%MatrixMarket matrix coordinate real general\n2 2\n", errs.ErrCodeInvalidFormat},
		{"out of range", "%%MatrixMarket matrix coordinate pattern general\n2 2 1\n3 1\n", errs.ErrCodeInvalidFormat},
		{"not a number", "%%MatrixMarket matrix coordinate pattern general\n2 2 1\nx 1\n", errs.ErrCodeInvalidFormat},
		{"count mismatch", "%%MatrixMarket matrix coordinate pattern general\n2 2 2\n1 1\n", errs.ErrCodeInvalidFormat},
		{"huge count", "%%MatrixMarket matrix coordinate pattern general\n3 3 9223372036854775807\n1 1\n", errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMatrixMarket(strings.NewReader(tt.in))
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestMatrixMarketRoundTrip(t *testing.T) {
	p, err := ReadMatrixMarket(strings.NewReader(arrowMTX))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteMatrixMarket(&buf, p); err != nil {
		t.Fatalf("WriteMatrixMarket: %v", err)
	}
	back, err := ReadMatrixMarket(&buf)
	if err != nil {
		t.Fatalf("re-read: %v", err)
	}
	if !reflect.DeepEqual(back, p) {
		t.Errorf("round trip changed the pattern")
	}
}

func TestReadMatrixJSON(t *testing.T) {
	p, err := ReadMatrixJSON(strings.NewReader(`{"nrow": 3, "ncol": 3, "entries": [[1,0],[2,1],[1,0]]}`))
	if err != nil {
		t.Fatalf("ReadMatrixJSON: %v", err)
	}
	if p.NNZ() != 2 {
		t.Errorf("NNZ() = %d, want 2 (duplicates merged)", p.NNZ())
	}

	_, err = ReadMatrixJSON(strings.NewReader(`{"nrow": 2, "ncol": 2, "entries": [[5,0]]}`))
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("out-of-range entry: error = %v, want INVALID_FORMAT", err)
	}
	_, err = ReadMatrixJSON(strings.NewReader(`{"nrow":`))
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("truncated JSON: error = %v, want INVALID_FORMAT", err)
	}
}

func TestImportExportMatrix(t *testing.T) {
	dir := t.TempDir()
	p, err := MatrixFromPairs(3, 3, [][2]int{{1, 0}, {2, 1}})
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"m.json", "m.mtx"} {
		path := filepath.Join(dir, name)
		if err := ExportMatrix(p, path); err != nil {
			t.Fatalf("ExportMatrix(%s): %v", name, err)
		}
		back, err := ImportMatrix(path)
		if err != nil {
			t.Fatalf("ImportMatrix(%s): %v", name, err)
		}
		if !reflect.DeepEqual(back.Entries(), p.Entries()) {
			t.Errorf("%s: entries = %v, want %v", name, back.Entries(), p.Entries())
		}
	}

	_, err = ImportMatrix(filepath.Join(dir, "missing.mtx"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file: error = %v, want FILE_NOT_FOUND", err)
	}
}

func sevenPath(t *testing.T) *nd.Result {
	t.Helper()
	var edges [][2]int
	for i := 0; i < 6; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	g, err := graph.New(7, edges)
	if err != nil {
		t.Fatal(err)
	}
	cut := nd.OracleFunc(func(_ context.Context, g *graph.Graph) (nd.Separation, error) {
		n := g.NodeCount()
		if n < 3 {
			return nd.Separation{}, nd.ErrPartitionFailed
		}
		s := nd.Separation{Separator: []int{n / 2}}
		for v := 0; v < n; v++ {
			if v < n/2 {
				s.A = append(s.A, v)
			} else if v > n/2 {
				s.B = append(s.B, v)
			}
		}
		return s, nil
	})
	opts := nd.DefaultOptions()
	opts.SmallThreshold = 2
	res, err := nd.NewEngine(cut, nil).Order(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestOrderingRoundTrip(t *testing.T) {
	res := sevenPath(t)
	for _, oneBased := range []bool{false, true} {
		doc := NewOrdering(res, "sym", oneBased)
		var buf bytes.Buffer
		if err := WriteOrdering(&buf, doc); err != nil {
			t.Fatalf("WriteOrdering: %v", err)
		}
		if !strings.Contains(buf.String(), `"separator"`) {
			t.Error("kinds should be encoded by name")
		}

		back, err := ReadOrdering(&buf)
		if err != nil {
			t.Fatalf("ReadOrdering: %v", err)
		}
		restored, err := back.Result()
		if err != nil {
			t.Fatalf("Result: %v", err)
		}
		if !reflect.DeepEqual(restored.Perm, res.Perm) || !reflect.DeepEqual(restored.Parent, res.Parent) {
			t.Errorf("oneBased=%v: round trip changed the ordering", oneBased)
		}
		if restored.Stats != res.Stats {
			t.Errorf("oneBased=%v: stats = %+v, want %+v", oneBased, restored.Stats, res.Stats)
		}
	}
}

func TestOrderingOneBasedArrays(t *testing.T) {
	doc := NewOrdering(sevenPath(t), "sym", true)
	if want := []int{1, 3, 2, 5, 7, 6, 4}; !reflect.DeepEqual(doc.Perm, want) {
		t.Errorf("Perm = %v, want %v", doc.Perm, want)
	}
	if doc.Parent[0] != 0 {
		t.Errorf("root parent = %d, want 0", doc.Parent[0])
	}
}

func TestImportOrdering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "order.json")
	if err := ExportOrdering(NewOrdering(sevenPath(t), "sym", false), path); err != nil {
		t.Fatalf("ExportOrdering: %v", err)
	}
	doc, err := ImportOrdering(path)
	if err != nil {
		t.Fatalf("ImportOrdering: %v", err)
	}
	if doc.NComp != 7 || doc.Mode != "sym" {
		t.Errorf("doc = %+v", doc)
	}

	if err := os.WriteFile(path, []byte(`{"n": 2, "perm": [0]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err = ImportOrdering(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.Result(); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("inconsistent doc: error = %v, want INVALID_FORMAT", err)
	}
}

func TestImportExampleMatrices(t *testing.T) {
	grid, err := ImportMatrix(filepath.Join("..", "..", "examples", "matrices", "grid5.mtx"))
	if err != nil {
		t.Fatalf("ImportMatrix(grid5): %v", err)
	}
	// 25 diagonal entries plus 40 mirrored stencil couplings.
	if grid.NRow != 25 || grid.NNZ() != 105 {
		t.Errorf("grid5 = %dx%d with %d entries, want 25x25 with 105", grid.NRow, grid.NCol, grid.NNZ())
	}
	if !grid.Has(0, 5) || !grid.Has(5, 0) {
		t.Error("grid5 should couple vertex 0 with the vertex below it")
	}

	rect, err := ImportMatrix(filepath.Join("..", "..", "examples", "matrices", "rect4x6.mtx"))
	if err != nil {
		t.Fatalf("ImportMatrix(rect4x6): %v", err)
	}
	if rect.NRow != 4 || rect.NCol != 6 || rect.NNZ() != 9 {
		t.Errorf("rect4x6 = %dx%d with %d entries, want 4x6 with 9", rect.NRow, rect.NCol, rect.NNZ())
	}
	if _, err := graph.Build(rect, graph.Symmetric); !errs.Is(err, errs.ErrCodeInvalidShape) {
		t.Errorf("sym graph of a rectangular pattern: err = %v, want INVALID_SHAPE", err)
	}
}
