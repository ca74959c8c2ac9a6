package cli

import (
	"context"
	"encoding/json"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ndorder/pkg/api"
	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/graph"
	pkgio "github.com/matzehuels/ndorder/pkg/io"
	"github.com/matzehuels/ndorder/pkg/pipeline"
	"github.com/matzehuels/ndorder/pkg/symbolic"
)

type statsOpts struct {
	orderFlags
	perm   string
	asJSON bool
}

// statsCommand creates the stats command, which compares the fill of an
// ordering with that of the natural order.
func (c *CLI) statsCommand() *cobra.Command {
	opts := &statsOpts{}

	cmd := &cobra.Command{
		Use:   "stats <matrix>",
		Short: "Compare the fill of an ordering with the natural order",
		Long: `Compute the symbolic Cholesky statistics of a matrix under a nested
dissection ordering and under the natural order.

With --perm the permutation is read from an ordering file written by
"ndorder order"; otherwise a fresh ordering is computed.`,
		Example: `  # Order and compare
  ndorder stats grid.mtx

  # Evaluate an existing ordering
  ndorder stats grid.mtx --perm grid.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStats(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.perm, "perm", "p", "", "ordering file to evaluate")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the statistics as JSON")

	return cmd
}

func (c *CLI) runStats(ctx context.Context, w io.Writer, input string, opts *statsOpts) error {
	var fill, baseline symbolic.Stats
	var err error
	if opts.perm != "" {
		fill, baseline, err = c.statsForFile(ctx, input, opts)
	} else {
		fill, baseline, err = c.statsForFresh(ctx, input, opts)
	}
	if err != nil {
		return err
	}

	if opts.asJSON {
		resp := api.AnalyzeResponse{Fill: fill, Baseline: baseline, FillRatio: fill.FillRatio(), Reduction: 1}
		if fill.NNZL > 0 {
			resp.Reduction = float64(baseline.NNZL) / float64(fill.NNZL)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	prev := stdout
	stdout = w
	defer func() { stdout = prev }()
	printKeyValue("Matrix", input)
	printKeyValue("Dimension", strconv.Itoa(fill.N))
	printFillTable(fill, baseline)
	return nil
}

func (c *CLI) statsForFresh(ctx context.Context, input string, opts *statsOpts) (symbolic.Stats, symbolic.Stats, error) {
	popts, err := opts.options(c, input)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	popts.Analyze = true
	res, err := c.execute(ctx, popts, opts.noCache, true)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	return *res.Fill, *res.Baseline, nil
}

// statsForFile evaluates the permutation of an ordering file. The graph is
// built in the mode recorded in the file unless --mode is given.
func (c *CLI) statsForFile(ctx context.Context, input string, opts *statsOpts) (symbolic.Stats, symbolic.Stats, error) {
	doc, err := pkgio.ImportOrdering(opts.perm)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	res, err := doc.Result()
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}

	modeName, ok, err := opts.explicitMode()
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	if !ok {
		modeName = doc.Mode
	}
	mode, err := graph.ParseMode(modeName)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}

	p, err := pkgio.ImportMatrix(input)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	g, err := graph.Build(p, mode)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	if len(res.Perm) != g.NodeCount() {
		return symbolic.Stats{}, symbolic.Stats{}, errs.New(errs.ErrCodeInvalidInput,
			"ordering has %d entries, %s graph of %s has %d vertices", len(res.Perm), mode, input, g.NodeCount())
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	defer runner.Close()

	hash := pipeline.PatternHash(p)
	fill, _, err := runner.AnalyzeWithCacheInfo(ctx, g, hash, res.Perm)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	baseline, _, err := runner.AnalyzeWithCacheInfo(ctx, g, hash, nil)
	if err != nil {
		return symbolic.Stats{}, symbolic.Stats{}, err
	}
	return fill, baseline, nil
}
