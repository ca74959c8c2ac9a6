package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/nd"
	"github.com/matzehuels/ndorder/pkg/septree"
	"github.com/matzehuels/ndorder/pkg/symbolic"
)

// Ordering is the JSON document of a computed ordering.
//
// With OneBased set, Perm, Parent and Membership hold 1-based indices and
// roots have parent 0; otherwise they are 0-based and roots have parent -1.
type Ordering struct {
	RunID      string          `json:"run_id,omitempty"`
	Mode       string          `json:"mode"`
	N          int             `json:"n"`
	NComp      int             `json:"ncomp"`
	OneBased   bool            `json:"one_based,omitempty"`
	Perm       []int           `json:"perm"`
	Parent     []int           `json:"parent"`
	Membership []int           `json:"membership"`
	Kinds      []septree.Kind  `json:"kinds"`
	Stats      *nd.Stats       `json:"stats,omitempty"`
	Fill       *symbolic.Stats `json:"fill,omitempty"`
	Baseline   *symbolic.Stats `json:"baseline,omitempty"`
	Options    *nd.Options     `json:"options,omitempty"`
}

// NewOrdering describes res as a document. The arrays are copied.
func NewOrdering(res *nd.Result, mode string, oneBased bool) *Ordering {
	o := &Ordering{
		Mode:     mode,
		N:        len(res.Perm),
		NComp:    res.NComp(),
		OneBased: oneBased,
		Kinds:    append([]septree.Kind(nil), res.Kinds...),
	}
	stats := res.Stats
	o.Stats = &stats
	if oneBased {
		o.Perm, o.Parent, o.Membership = res.OneBased()
	} else {
		o.Perm = append([]int(nil), res.Perm...)
		o.Parent = append([]int(nil), res.Parent...)
		o.Membership = append([]int(nil), res.Membership...)
	}
	return o
}

// Result restores the ordering as an [nd.Result], converting 1-based
// documents back to 0-based indices.
func (o *Ordering) Result() (*nd.Result, error) {
	perm, parent, membership := o.Perm, o.Parent, o.Membership
	if o.OneBased {
		perm, parent, membership = shift(perm, -1), shift(parent, -1), shift(membership, -1)
	}
	if len(perm) != o.N {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "ordering: n=%d but permutation has %d entries", o.N, len(perm))
	}
	kinds := o.Kinds
	if len(kinds) == 0 {
		kinds = nil
	}
	res, err := nd.Restore(perm, parent, membership, kinds)
	if err != nil {
		return nil, err
	}
	if o.Stats != nil {
		res.Stats = *o.Stats
	}
	return res, nil
}

func shift(in []int, d int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = v + d
	}
	return out
}

// ReadOrdering decodes an ordering document from r.
func ReadOrdering(r io.Reader) (*Ordering, error) {
	var o Ordering
	if err := json.NewDecoder(r).Decode(&o); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode ordering")
	}
	return &o, nil
}

// WriteOrdering encodes o as indented JSON.
func WriteOrdering(w io.Writer, o *Ordering) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(o); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ImportOrdering reads an ordering document from path.
func ImportOrdering(path string) (*Ordering, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadOrdering(f)
}

// ExportOrdering writes o to path.
func ExportOrdering(o *Ordering, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteOrdering(f, o)
}
