package api

import (
	errs "github.com/matzehuels/ndorder/pkg/errors"
	pkgio "github.com/matzehuels/ndorder/pkg/io"
	"github.com/matzehuels/ndorder/pkg/pipeline"
	"github.com/matzehuels/ndorder/pkg/sparse"
	"github.com/matzehuels/ndorder/pkg/symbolic"
)

// Matrix is a sparse pattern in request form.
type Matrix struct {
	NRow    int      `json:"nrow"`
	NCol    int      `json:"ncol"`
	Entries [][2]int `json:"entries"`
}

// Pattern converts m, rejecting more than maxNNZ entries and dimensions
// above maxDim when the limits are positive.
func (m Matrix) Pattern(maxNNZ, maxDim int) (*sparse.Pattern, error) {
	if maxDim > 0 && (m.NRow > maxDim || m.NCol > maxDim) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%dx%d matrix exceeds the dimension limit of %d", m.NRow, m.NCol, maxDim)
	}
	if maxNNZ > 0 && len(m.Entries) > maxNNZ {
		return nil, errs.New(errs.ErrCodeInvalidInput, "%d entries exceed the limit of %d", len(m.Entries), maxNNZ)
	}
	p, err := pkgio.MatrixFromPairs(m.NRow, m.NCol, m.Entries)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "matrix")
	}
	return p, nil
}

// OrderRequest asks for an ordering of a pattern.
type OrderRequest struct {
	Matrix

	Mode             string    `json:"mode,omitempty"`
	SmallThreshold   *int      `json:"small_threshold,omitempty"`
	SplitComponents  bool      `json:"split_components,omitempty"`
	SeparatorQuality *float64  `json:"separator_quality,omitempty"`
	LeafOrdering     string    `json:"leaf_ordering,omitempty"`
	Opts             []float64 `json:"opts,omitempty"`
	Workers          int       `json:"workers,omitempty"`
	Collapse         int       `json:"collapse,omitempty"`
	OneBased         bool      `json:"one_based,omitempty"`
	Analyze          bool      `json:"analyze,omitempty"`
}

// apply copies the ordering parameters of r onto opts. A positional
// vector overrides the named parameters.
func (r OrderRequest) apply(opts *pipeline.Options) error {
	if r.Mode != "" {
		opts.Mode = r.Mode
	}
	if r.SmallThreshold != nil {
		opts.SmallThreshold = r.SmallThreshold
	}
	if r.SplitComponents {
		opts.SplitComponents = true
	}
	if r.SeparatorQuality != nil {
		opts.SeparatorQuality = r.SeparatorQuality
	}
	if r.LeafOrdering != "" {
		opts.LeafOrdering = r.LeafOrdering
	}
	if r.Workers != 0 {
		opts.Workers = r.Workers
	}
	if r.Collapse != 0 {
		opts.Collapse = r.Collapse
	}
	opts.Analyze = r.Analyze
	if r.Opts != nil {
		return opts.ApplyVector(r.Opts)
	}
	return nil
}

// AnalyzeRequest asks for the fill statistics of a permutation.
type AnalyzeRequest struct {
	Matrix

	Mode     string `json:"mode,omitempty"`
	Perm     []int  `json:"perm"`
	OneBased bool   `json:"one_based,omitempty"`
}

// AnalyzeResponse compares a permutation with the natural order.
type AnalyzeResponse struct {
	Fill      symbolic.Stats `json:"fill"`
	Baseline  symbolic.Stats `json:"baseline"`
	FillRatio float64        `json:"fill_ratio"`
	Reduction float64        `json:"reduction"` // Baseline nnz(L) divided by nnz(L)
}

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status string `json:"status"`
}
