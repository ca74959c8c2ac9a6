package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ndorder/pkg/septree"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

type treeOpts struct {
	orderFlags
	output   string
	format   string
	oneBased bool
}

// treeCommand creates the tree command for rendering separator trees.
func (c *CLI) treeCommand() *cobra.Command {
	opts := &treeOpts{}

	cmd := &cobra.Command{
		Use:   "tree <matrix>",
		Short: "Render the separator tree of an ordering",
		Long: `Order a matrix and render the resulting separator tree.

Separators are drawn as boxes, leaves as rounded boxes; every node lists the
vertices it holds. DOT output can be processed further with Graphviz, SVG is
rendered directly.`,
		Example: `  # Write the tree as DOT to stdout
  ndorder tree grid.mtx

  # Render SVG, format taken from the file extension
  ndorder tree grid.mtx --small 16 -o tree.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot or svg (default from extension, else dot)")
	cmd.Flags().BoolVar(&opts.oneBased, "one-based", false, "label vertices from 1")

	return cmd
}

func (c *CLI) runTree(ctx context.Context, w io.Writer, input string, opts *treeOpts) error {
	format, err := treeFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	popts, err := opts.options(c, input)
	if err != nil {
		return err
	}
	res, err := c.execute(ctx, popts, opts.noCache, opts.output == "")
	if err != nil {
		return err
	}

	data, err := renderTree(ctx, res.Ordering.Tree, format, opts.oneBased)
	if err != nil {
		return err
	}
	if err := writeFile(w, data, opts.output); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if opts.output != "" {
		printSuccess("Separator tree with %d components", res.Ordering.NComp())
		printFile(opts.output)
	}
	return nil
}

// treeFormat resolves the output format from the flag or the extension.
func treeFormat(flag, output string) (string, error) {
	format := strings.ToLower(flag)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		if format != formatSVG {
			format = formatDOT
		}
	}
	switch format {
	case formatDOT, "gv":
		return formatDOT, nil
	case formatSVG:
		return formatSVG, nil
	}
	return "", fmt.Errorf("unsupported tree format %q (must be dot or svg)", flag)
}

func renderTree(ctx context.Context, t *septree.Tracker, format string, oneBased bool) ([]byte, error) {
	labels := vertexLabels(t.N(), oneBased)
	if format == formatSVG {
		svg, err := t.RenderSVG(ctx, labels)
		if err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		return svg, nil
	}
	return []byte(t.ToDOT(labels)), nil
}

// vertexLabels numbers vertices from 0, or from 1 when oneBased is set.
// Zero-based labels are the default rendering, so nil is returned for them.
func vertexLabels(n int, oneBased bool) []string {
	if !oneBased {
		return nil
	}
	labels := make([]string, n)
	for v := range labels {
		labels[v] = strconv.Itoa(v + 1)
	}
	return labels
}

// writeFile writes data to path, or to w when path is empty.
func writeFile(w io.Writer, data []byte, path string) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
