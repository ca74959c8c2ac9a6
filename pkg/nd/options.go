package nd

import (
	"math"
	"strings"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/graph"
)

const (
	// DefaultSmallThreshold is the subgraph size below which recursion stops.
	DefaultSmallThreshold = 200

	// DefaultSeparatorQuality accepts any separator smaller than the
	// subgraph it cuts.
	DefaultSeparatorQuality = 1.0
)

// LeafOrdering selects how leaf subgraphs are ordered.
type LeafOrdering int

const (
	// LeafAuto orders leaves by minimum degree, using the column-oriented
	// family for row and column modes.
	LeafAuto LeafOrdering = iota
	// LeafNatural keeps leaf vertices in their natural order.
	LeafNatural
	// LeafMinDegree forces the plain minimum degree family.
	LeafMinDegree
	// LeafColumnMinDegree forces the column-oriented family.
	LeafColumnMinDegree
)

var leafOrderingNames = map[LeafOrdering]string{
	LeafAuto:            "auto",
	LeafNatural:         "natural",
	LeafMinDegree:       "mindegree",
	LeafColumnMinDegree: "colmindegree",
}

// String returns the selector name accepted by [ParseLeafOrdering].
func (l LeafOrdering) String() string {
	if s, ok := leafOrderingNames[l]; ok {
		return s
	}
	return "unknown"
}

// MarshalText encodes the leaf ordering by name.
func (l LeafOrdering) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidOptions, "unknown leaf ordering %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText decodes a name accepted by [ParseLeafOrdering].
func (l *LeafOrdering) UnmarshalText(b []byte) error {
	v, err := ParseLeafOrdering(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Valid reports whether l is a known leaf ordering.
func (l LeafOrdering) Valid() bool {
	_, ok := leafOrderingNames[l]
	return ok
}

// Family resolves the leaf orderer family for graphs built in the given
// mode. The boolean is false for [LeafNatural], which never calls the leaf
// orderer.
func (l LeafOrdering) Family(mode graph.Mode) (LeafFamily, bool) {
	switch l {
	case LeafNatural:
		return 0, false
	case LeafMinDegree:
		return FamilyMinDegree, true
	case LeafColumnMinDegree:
		return FamilyColumnMinDegree, true
	}
	if mode == graph.Symmetric {
		return FamilyMinDegree, true
	}
	return FamilyColumnMinDegree, true
}

// ParseLeafOrdering converts a selector name to a LeafOrdering. Matching is
// case-insensitive; an empty string selects [LeafAuto].
func ParseLeafOrdering(s string) (LeafOrdering, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LeafAuto, nil
	}
	for l, name := range leafOrderingNames {
		if name == s {
			return l, nil
		}
	}
	return 0, errs.New(errs.ErrCodeInvalidOptions, "unknown leaf ordering %q (must be one of: auto, natural, mindegree, colmindegree)", s)
}

// Options are the control parameters of one ordering call. They are read
// once at the start of [Engine.Order] and never modified.
type Options struct {
	// SmallThreshold is the size below which a subgraph becomes a leaf.
	SmallThreshold int `json:"small_threshold"`

	// SplitComponents orders the connected components of a disconnected
	// subgraph independently.
	SplitComponents bool `json:"split_components"`

	// SeparatorQuality rejects a separator unless
	// |separator| < SeparatorQuality * |subgraph|.
	SeparatorQuality float64 `json:"separator_quality"`

	// LeafOrdering selects the leaf ordering strategy.
	LeafOrdering LeafOrdering `json:"leaf_ordering"`

	// Workers bounds how many subgraphs are processed concurrently. Values
	// below 2 run sequentially.
	Workers int `json:"workers"`
}

// DefaultOptions returns the standard control parameters: leaves below 200
// vertices, no component splitting, any separator smaller than its subgraph
// accepted, automatic leaf ordering, one worker.
func DefaultOptions() Options {
	return Options{
		SmallThreshold:   DefaultSmallThreshold,
		SeparatorQuality: DefaultSeparatorQuality,
		LeafOrdering:     LeafAuto,
		Workers:          1,
	}
}

// Validate checks that all fields are in range.
func (o Options) Validate() error {
	if o.SmallThreshold < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "small threshold must be non-negative, got %d", o.SmallThreshold)
	}
	if math.IsNaN(o.SeparatorQuality) || o.SeparatorQuality < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "separator quality must be non-negative, got %v", o.SeparatorQuality)
	}
	if !o.LeafOrdering.Valid() {
		return errs.New(errs.ErrCodeInvalidOptions, "unknown leaf ordering %d", int(o.LeafOrdering))
	}
	if o.Workers < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "workers must be non-negative, got %d", o.Workers)
	}
	return nil
}

// OptionsFromVector builds options from a positional control vector,
// starting from the defaults:
//
//	v[0]  smallest subgraph that is partitioned (SmallThreshold)
//	v[1]  nonzero to split connected components
//	v[2]  separator quality
//	v[3]  leaf ordering: 0 natural, 1 automatic, 2 column-oriented
//
// Missing trailing entries keep their defaults and extra entries are
// ignored.
func OptionsFromVector(v []float64) (Options, error) {
	o := DefaultOptions()
	if len(v) > 0 {
		o.SmallThreshold = int(v[0])
	}
	if len(v) > 1 {
		o.SplitComponents = v[1] != 0
	}
	if len(v) > 2 {
		o.SeparatorQuality = v[2]
	}
	if len(v) > 3 {
		switch v[3] {
		case 0:
			o.LeafOrdering = LeafNatural
		case 1:
			o.LeafOrdering = LeafAuto
		case 2:
			o.LeafOrdering = LeafColumnMinDegree
		default:
			return Options{}, errs.New(errs.ErrCodeInvalidOptions, "leaf ordering selector must be 0, 1 or 2, got %v", v[3])
		}
	}
	return o, o.Validate()
}
