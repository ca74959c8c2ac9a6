package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/sparse"
)

type matrixJSON struct {
	NRow    int      `json:"nrow"`
	NCol    int      `json:"ncol"`
	Entries [][2]int `json:"entries"`
}

// ReadMatrixJSON decodes a JSON pattern from r. Entries are 0-based
// [row, col] pairs; duplicates are merged.
func ReadMatrixJSON(r io.Reader) (*sparse.Pattern, error) {
	var data matrixJSON
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode matrix")
	}
	return data.pattern()
}

func (m matrixJSON) pattern() (*sparse.Pattern, error) {
	entries := make([]sparse.Entry, len(m.Entries))
	for i, e := range m.Entries {
		entries[i] = sparse.Entry{Row: e[0], Col: e[1]}
	}
	p, err := sparse.FromEntries(m.NRow, m.NCol, entries)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "matrix entries")
	}
	return p, nil
}

// WriteMatrixJSON encodes p in the JSON pattern format.
func WriteMatrixJSON(w io.Writer, p *sparse.Pattern) error {
	out := matrixJSON{NRow: p.NRow, NCol: p.NCol, Entries: make([][2]int, 0, p.NNZ())}
	for _, e := range p.Entries() {
		out.Entries = append(out.Entries, [2]int{e.Row, e.Col})
	}
	enc := json.NewEncoder(w)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MatrixFromPairs builds a pattern from 0-based [row, col] pairs, as carried
// by API requests.
func MatrixFromPairs(nrow, ncol int, pairs [][2]int) (*sparse.Pattern, error) {
	return matrixJSON{NRow: nrow, NCol: ncol, Entries: pairs}.pattern()
}

// ImportMatrix reads a pattern from path. Files ending in .json are decoded
// as JSON patterns; everything else as Matrix Market.
func ImportMatrix(path string) (*sparse.Pattern, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ReadMatrixJSON(f)
	}
	return ReadMatrixMarket(f)
}

// ExportMatrix writes p to path, choosing the format by extension like
// [ImportMatrix].
func ExportMatrix(p *sparse.Pattern, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return WriteMatrixJSON(f, p)
	}
	return WriteMatrixMarket(f, p)
}
