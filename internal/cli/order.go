package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ndorder/pkg/api"
	pkgio "github.com/matzehuels/ndorder/pkg/io"
	"github.com/matzehuels/ndorder/pkg/pipeline"
	"github.com/matzehuels/ndorder/pkg/sparse"
)

// orderOpts holds the flags of the order command.
type orderOpts struct {
	orderFlags
	output   string
	oneBased bool
	analyze  bool
	remote   string
	quiet    bool
}

// orderCommand creates the order command.
func (c *CLI) orderCommand() *cobra.Command {
	opts := &orderOpts{}

	cmd := &cobra.Command{
		Use:   "order <matrix>",
		Short: "Compute a nested dissection ordering",
		Long: `Compute a fill-reducing nested dissection ordering of a sparse pattern.

The matrix is read from a Matrix Market (.mtx) or JSON file. The result is a
JSON document with the permutation, the separator tree (parent array) and the
component of every vertex.`,
		Example: `  # Order a symmetric matrix and print the result
  ndorder order bcsstk01.mtx

  # Order the columns of a rectangular matrix, 1-based, with fill statistics
  ndorder order lp_afiro.mtx --mode col --one-based --analyze -o afiro.json

  # Positional control vector: small=64, split components, quality 0.8
  ndorder order grid.mtx --opts 64,1,0.8

  # Order on a running service
  ndorder order grid.mtx --remote http://localhost:8080`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runOrder(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.oneBased, "one-based", false, "write 1-based indices (roots get parent 0)")
	cmd.Flags().BoolVarP(&opts.analyze, "analyze", "a", false, "include fill statistics of the ordering and the natural order")
	cmd.Flags().StringVar(&opts.remote, "remote", "", "order on the ndorder service at this URL")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress status output")

	return cmd
}

func (c *CLI) runOrder(ctx context.Context, w io.Writer, input string, opts *orderOpts) error {
	popts, err := opts.options(c, input)
	if err != nil {
		return err
	}
	popts.Analyze = opts.analyze

	var (
		doc    *pkgio.Ordering
		cached bool
		nv, ne int
	)
	if opts.remote != "" {
		doc, err = c.orderRemote(ctx, popts, opts)
		if err != nil {
			return err
		}
	} else {
		res, err := c.execute(ctx, popts, opts.noCache, opts.quiet || opts.output == "")
		if err != nil {
			return err
		}
		doc = pkgio.NewOrdering(res.Ordering, res.Mode.String(), opts.oneBased)
		doc.RunID = res.RunID
		doc.Fill, doc.Baseline = res.Fill, res.Baseline
		if _, ndOpts, err := popts.Resolve(); err == nil {
			doc.Options = &ndOpts
		}
		cached = res.CacheInfo.OrderHit
		nv, ne = res.Stats.Vertices, res.Stats.Edges
	}

	if opts.output == "" {
		return pkgio.WriteOrdering(w, doc)
	}
	if err := pkgio.ExportOrdering(doc, opts.output); err != nil {
		return err
	}
	if opts.quiet {
		return nil
	}
	printSuccess("Ordered %d vertices into %d components", doc.N, doc.NComp)
	if opts.remote == "" {
		printStats(nv, ne, doc.NComp, cached)
	}
	if doc.Fill != nil && doc.Baseline != nil {
		printFillTable(*doc.Fill, *doc.Baseline)
	}
	printFile(opts.output)
	return nil
}

// execute runs the local pipeline behind a spinner. The spinner is skipped
// when quiet is set.
func (c *CLI) execute(ctx context.Context, popts pipeline.Options, noCache, quiet bool) (*pipeline.Result, error) {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	var spinner *Spinner
	if !quiet {
		spinner = newSpinner(ctx, "Ordering "+popts.Input+"...").Start()
	}
	res, err := runner.Execute(ctx, popts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Ordered %d vertices", res.Stats.Vertices))
	return res, nil
}

// orderRemote sends the pattern to the service at opts.remote.
func (c *CLI) orderRemote(ctx context.Context, popts pipeline.Options, opts *orderOpts) (*pkgio.Ordering, error) {
	p, err := pkgio.ImportMatrix(popts.Input)
	if err != nil {
		return nil, err
	}
	req := api.OrderRequest{
		Matrix:           matrixRequest(p),
		Mode:             popts.Mode,
		SmallThreshold:   popts.SmallThreshold,
		SplitComponents:  popts.SplitComponents,
		SeparatorQuality: popts.SeparatorQuality,
		LeafOrdering:     popts.LeafOrdering,
		Workers:          popts.Workers,
		Collapse:         popts.Collapse,
		OneBased:         opts.oneBased,
		Analyze:          popts.Analyze,
	}

	client := api.NewClient(opts.remote)
	c.Logger.Debug("ordering remotely", "url", opts.remote, "nnz", p.NNZ())
	spinner := newSpinner(ctx, "Ordering on "+opts.remote+"...")
	if !opts.quiet && opts.output != "" {
		spinner.Start()
	}
	doc, err := client.Order(ctx, req)
	spinner.Stop()
	if err != nil {
		return nil, fmt.Errorf("remote order: %w", err)
	}
	return doc, nil
}

// matrixRequest lists the entries of p in column order.
func matrixRequest(p *sparse.Pattern) api.Matrix {
	m := api.Matrix{NRow: p.NRow, NCol: p.NCol, Entries: make([][2]int, 0, p.NNZ())}
	for j := 0; j < p.NCol; j++ {
		for _, i := range p.Column(j) {
			m.Entries = append(m.Entries, [2]int{i, j})
		}
	}
	return m
}
