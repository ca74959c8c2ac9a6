package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/pipeline"
)

// orderFlags are the ordering parameters shared by every command that
// computes an ordering. Flags the user did not set leave the configuration
// file values in place.
type orderFlags struct {
	mode     string
	vector   string
	small    int
	split    bool
	quality  float64
	leaf     string
	workers  int
	collapse int
	noCache  bool
	refresh  bool
	changed  func(name string) bool
}

func (f *orderFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.mode, "mode", "m", pipeline.DefaultMode, "graph mode: sym (tril(A)), row (A*A') or col (A'*A)")
	fs.StringVar(&f.vector, "opts", "", "positional control vector: small,split,quality,leaf (e.g. 200,1,0.5,1)")
	fs.IntVar(&f.small, "small", 0, "subgraphs below this size are ordered directly (default 200)")
	fs.BoolVar(&f.split, "split", false, "order connected components independently")
	fs.Float64Var(&f.quality, "quality", 0, "reject separators not smaller than quality*n (default 1)")
	fs.StringVar(&f.leaf, "leaf", pipeline.DefaultLeafOrdering, "leaf ordering: auto, natural, mindegree or colmindegree")
	fs.IntVarP(&f.workers, "workers", "j", 0, "concurrent dissection workers (default 1)")
	fs.IntVar(&f.collapse, "collapse", 0, "merge separator subtrees smaller than this into leaves")
	fs.BoolVar(&f.noCache, "no-cache", false, "disable caching")
	fs.BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
	f.changed = fs.Changed

	_ = cmd.RegisterFlagCompletionFunc("mode", cobra.FixedCompletions(
		[]string{"sym", "row", "col"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("leaf", cobra.FixedCompletions(
		[]string{"auto", "natural", "mindegree", "colmindegree"}, cobra.ShellCompDirectiveNoFileComp))
}

// explicitMode returns --mode when it was given. Only an absent flag
// falls back to the default; an explicit empty selector is unrecognized.
func (f *orderFlags) explicitMode() (string, bool, error) {
	if !f.isSet("mode") {
		return "", false, nil
	}
	if strings.TrimSpace(f.mode) == "" {
		return "", false, errs.New(errs.ErrCodeUnrecognizedMode, "empty --mode (must be one of: sym, row, col)")
	}
	return f.mode, true, nil
}

// options builds pipeline options: configuration defaults first, then the
// flags that were set, then the positional vector.
func (f *orderFlags) options(c *CLI, input string) (pipeline.Options, error) {
	opts := pipeline.Options{Input: input, Logger: c.Logger}
	c.Config.Ordering.Apply(&opts)

	if mode, ok, err := f.explicitMode(); err != nil {
		return pipeline.Options{}, err
	} else if ok {
		opts.Mode = mode
	}
	if f.isSet("small") {
		v := f.small
		opts.SmallThreshold = &v
	}
	if f.isSet("split") {
		opts.SplitComponents = f.split
	}
	if f.isSet("quality") {
		v := f.quality
		opts.SeparatorQuality = &v
	}
	if f.isSet("leaf") {
		opts.LeafOrdering = f.leaf
	}
	if f.isSet("workers") {
		opts.Workers = f.workers
	}
	if f.isSet("collapse") {
		opts.Collapse = f.collapse
	}
	opts.Refresh = f.refresh

	if f.vector != "" {
		v, err := parseVector(f.vector)
		if err != nil {
			return opts, err
		}
		if err := opts.ApplyVector(v); err != nil {
			return opts, err
		}
	}
	return opts, opts.Validate()
}

func (f *orderFlags) isSet(name string) bool {
	return f.changed != nil && f.changed(name)
}

// parseVector parses a comma-separated list of numbers.
func parseVector(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidOptions, err, "invalid --opts entry %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}
