// Package pipeline runs the load, order and analyze stages shared by the
// CLI and the HTTP service.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read a sparse pattern from a file, or take one supplied in memory
//  2. Order: build the adjacency graph for the mode and run nested dissection
//  3. Analyze: compute the fill of the ordering and of the natural order
//
// Orderings and fill statistics are cached by a content hash of the pattern
// and the options that change the result.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	opts := pipeline.Options{Input: "bcsstk01.mtx", Mode: "sym", Analyze: true}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Ordering.Perm)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ndorder/pkg/cache"
	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/nd"
	"github.com/matzehuels/ndorder/pkg/sparse"
	"github.com/matzehuels/ndorder/pkg/symbolic"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API and config files
// =============================================================================

const (
	// DefaultMode is the graph derivation mode.
	DefaultMode = "sym"

	// DefaultLeafOrdering is the leaf ordering strategy.
	DefaultLeafOrdering = "auto"

	// DefaultWorkers is the number of concurrent dissection workers.
	DefaultWorkers = 1

	// MaxWorkers bounds Workers for requests from untrusted callers.
	MaxWorkers = 64
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
//
// SmallThreshold and SeparatorQuality are pointers because zero is a
// meaningful value for both; nil selects the default.
type Options struct {
	// Load options
	Input   string          `json:"input,omitempty"` // Path of a Matrix Market or JSON pattern file
	Pattern *sparse.Pattern `json:"-"`               // In-memory pattern; takes precedence over Input

	// Order options
	Mode             string   `json:"mode,omitempty"`
	SmallThreshold   *int     `json:"small_threshold,omitempty"`
	SplitComponents  bool     `json:"split_components,omitempty"`
	SeparatorQuality *float64 `json:"separator_quality,omitempty"`
	LeafOrdering     string   `json:"leaf_ordering,omitempty"`
	Workers          int      `json:"workers,omitempty"`
	Collapse         int      `json:"collapse,omitempty"` // Merge separator subtrees smaller than this
	Refresh          bool     `json:"refresh,omitempty"`  // Ignore cached results

	// Analyze options
	Analyze bool `json:"analyze,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger        `json:"-"`
	Oracle nd.SeparatorOracle `json:"-"`
	Leaves nd.LeafOrderer     `json:"-"`

	// CollaboratorKey names a custom Oracle or Leaves in cache keys.
	// Orderings from custom collaborators without a key are never cached.
	CollaboratorKey string `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	// Pattern is the loaded matrix pattern.
	Pattern *sparse.Pattern

	// PatternHash is the content hash of the pattern.
	PatternHash string

	// Graph is the adjacency graph that was ordered.
	Graph *graph.Graph

	// Mode is the resolved graph mode.
	Mode graph.Mode

	// Ordering is the nested dissection result.
	Ordering *nd.Result

	// Fill and Baseline hold the symbolic statistics of the ordering and
	// of the natural order. Both are nil unless Options.Analyze is set.
	Fill     *symbolic.Stats
	Baseline *symbolic.Stats

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NRow        int
	NCol        int
	NNZ         int
	Vertices    int
	Edges       int
	LoadTime    time.Duration
	OrderTime   time.Duration
	AnalyzeTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	OrderHit   bool // Whether the ordering came from cache
	AnalyzeHit bool // Whether the fill statistics came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields. It is idempotent.
func (o *Options) SetDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.SmallThreshold == nil {
		v := nd.DefaultSmallThreshold
		o.SmallThreshold = &v
	}
	if o.SeparatorQuality == nil {
		v := nd.DefaultSeparatorQuality
		o.SeparatorQuality = &v
	}
	if o.LeafOrdering == "" {
		o.LeafOrdering = DefaultLeafOrdering
	}
	if o.Workers == 0 {
		o.Workers = DefaultWorkers
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults and checks every field.
func (o *Options) Validate() error {
	o.SetDefaults()
	if o.Pattern == nil && o.Input == "" {
		return errs.New(errs.ErrCodeInvalidInput, "input file or pattern is required")
	}
	if o.Workers < 0 || o.Workers > MaxWorkers {
		return errs.New(errs.ErrCodeInvalidOptions, "workers must be between 0 and %d, got %d", MaxWorkers, o.Workers)
	}
	if o.Collapse < 0 {
		return errs.New(errs.ErrCodeInvalidOptions, "collapse must be non-negative, got %d", o.Collapse)
	}
	_, _, err := o.Resolve()
	return err
}

// Resolve converts the options into a graph mode and engine options.
// Defaults must have been applied.
func (o *Options) Resolve() (graph.Mode, nd.Options, error) {
	mode, err := graph.ParseMode(o.Mode)
	if err != nil {
		return 0, nd.Options{}, err
	}
	leaf, err := nd.ParseLeafOrdering(o.LeafOrdering)
	if err != nil {
		return 0, nd.Options{}, err
	}
	opts := nd.DefaultOptions()
	if o.SmallThreshold != nil {
		opts.SmallThreshold = *o.SmallThreshold
	}
	if o.SeparatorQuality != nil {
		opts.SeparatorQuality = *o.SeparatorQuality
	}
	opts.SplitComponents = o.SplitComponents
	opts.LeafOrdering = leaf
	opts.Workers = o.Workers
	if err := opts.Validate(); err != nil {
		return 0, nd.Options{}, err
	}
	return mode, opts, nil
}

// OrderingKeyOpts returns cache key options for an ordering.
func (o *Options) OrderingKeyOpts(mode graph.Mode, opts nd.Options) cache.OrderingKeyOpts {
	return cache.OrderingKeyOpts{
		Mode:             mode.String(),
		SmallThreshold:   opts.SmallThreshold,
		SplitComponents:  opts.SplitComponents,
		SeparatorQuality: opts.SeparatorQuality,
		LeafOrdering:     opts.LeafOrdering.String(),
		Collapse:         o.Collapse,
		Collaborators:    o.CollaboratorKey,
	}
}

// cacheable reports whether orderings for o may be read from or written
// to the cache.
func (o *Options) cacheable() bool {
	return (o.Oracle == nil && o.Leaves == nil) || o.CollaboratorKey != ""
}

// ApplyVector overrides the ordering options with a positional control
// vector, as accepted by [nd.OptionsFromVector].
func (o *Options) ApplyVector(v []float64) error {
	opts, err := nd.OptionsFromVector(v)
	if err != nil {
		return err
	}
	small, quality := opts.SmallThreshold, opts.SeparatorQuality
	o.SmallThreshold = &small
	o.SeparatorQuality = &quality
	o.SplitComponents = opts.SplitComponents
	o.LeafOrdering = opts.LeafOrdering.String()
	return nil
}
