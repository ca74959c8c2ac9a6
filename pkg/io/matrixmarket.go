package io

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/sparse"
)

const mmBanner = "%%MatrixMarket"

// ReadMatrixMarket decodes the pattern of a Matrix Market coordinate matrix.
// Indices in the file are 1-based. Entries stored as symmetric,
// skew-symmetric or Hermitian are mirrored across the diagonal.
func ReadMatrixMarket(r io.Reader) (*sparse.Pattern, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read matrix market header")
		}
		return nil, errs.New(errs.ErrCodeInvalidFormat, "empty matrix market file")
	}
	line++
	mirror, err := parseBanner(sc.Text())
	if err != nil {
		return nil, err
	}

	// Size line follows any comment lines.
	var nrow, ncol, nnz int
	for {
		if !sc.Scan() {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "missing size line")
		}
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 3 {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "line %d: size line needs 3 fields, got %d", line, len(fields))
		}
		if nrow, err = atoi(fields[0], line); err != nil {
			return nil, err
		}
		if ncol, err = atoi(fields[1], line); err != nil {
			return nil, err
		}
		if nnz, err = atoi(fields[2], line); err != nil {
			return nil, err
		}
		break
	}

	// The size line is untrusted; the count check below catches a wrong nnz.
	entries := make([]sparse.Entry, 0, min(nnz, maxPrealloc))
	read := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "%") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "line %d: entry needs row and column", line)
		}
		i, err := atoi(fields[0], line)
		if err != nil {
			return nil, err
		}
		j, err := atoi(fields[1], line)
		if err != nil {
			return nil, err
		}
		if i < 1 || i > nrow || j < 1 || j > ncol {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "line %d: entry (%d,%d) outside %dx%d", line, i, j, nrow, ncol)
		}
		entries = append(entries, sparse.Entry{Row: i - 1, Col: j - 1})
		if mirror && i != j {
			entries = append(entries, sparse.Entry{Row: j - 1, Col: i - 1})
		}
		read++
	}
	if err := sc.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "read matrix market entries")
	}
	if read != nnz {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "expected %d entries, found %d", nnz, read)
	}

	p, err := sparse.FromEntries(nrow, ncol, entries)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "build pattern")
	}
	return p, nil
}

// parseBanner checks the header line and reports whether entries must be
// mirrored.
func parseBanner(text string) (bool, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) != 5 || fields[0] != strings.ToLower(mmBanner) {
		return false, errs.New(errs.ErrCodeInvalidFormat, "missing %s banner", mmBanner)
	}
	if fields[1] != "matrix" {
		return false, errs.New(errs.ErrCodeUnsupported, "matrix market object %q", fields[1])
	}
	if fields[2] != "coordinate" {
		return false, errs.New(errs.ErrCodeUnsupported, "matrix market format %q (only coordinate)", fields[2])
	}
	switch fields[3] {
	case "pattern", "real", "integer", "complex":
	default:
		return false, errs.New(errs.ErrCodeInvalidFormat, "unknown field type %q", fields[3])
	}
	switch fields[4] {
	case "general":
		return false, nil
	case "symmetric", "skew-symmetric", "hermitian":
		return true, nil
	}
	return false, errs.New(errs.ErrCodeInvalidFormat, "unknown symmetry %q", fields[4])
}

// maxPrealloc bounds the entry slice allocated from the size line.
const maxPrealloc = 1 << 20

func atoi(s string, line int) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, errs.New(errs.ErrCodeInvalidFormat, "line %d: %q is not an integer", line, s)
	}
	if v < 0 {
		return 0, errs.New(errs.ErrCodeInvalidFormat, "line %d: negative value %d", line, v)
	}
	return v, nil
}

// WriteMatrixMarket encodes p as a general coordinate pattern matrix with
// 1-based indices, in column-major order.
func WriteMatrixMarket(w io.Writer, p *sparse.Pattern) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s matrix coordinate pattern general\n", mmBanner)
	fmt.Fprintf(bw, "%d %d %d\n", p.NRow, p.NCol, p.NNZ())
	for _, e := range p.Entries() {
		fmt.Fprintf(bw, "%d %d\n", e.Row+1, e.Col+1)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write matrix market: %w", err)
	}
	return nil
}
