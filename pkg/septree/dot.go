package septree

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
)

// maxLabelVertices caps how many vertices are spelled out in a node label.
const maxLabelVertices = 8

// ToDOT returns a Graphviz digraph of the separator tree.
//
// Separators are drawn as boxes and leaves as rounded boxes; each node shows
// its id, kind and vertices (truncated for large components). If labels[v]
// exists, vertex v is shown as labels[v], otherwise as its index. Pass nil
// for numeric labels.
func (t *Tracker) ToDOT(labels []string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph SeparatorTree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	for c := range t.parent {
		label := fmt.Sprintf("%d %s\\n%s", c, t.kind[c], t.vertexLabel(c, labels))
		if t.kind[c] == Separator {
			fmt.Fprintf(&buf, "  c%d [label=\"%s\", shape=box, fillcolor=\"#f2e6c9\"];\n", c, label)
		} else {
			fmt.Fprintf(&buf, "  c%d [label=\"%s\", shape=box, style=\"filled,rounded\"];\n", c, label)
		}
	}
	if len(t.parent) > 0 {
		buf.WriteString("\n")
	}
	for c, p := range t.parent {
		if p != NoParent {
			fmt.Fprintf(&buf, "  c%d -> c%d;\n", p, c)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func (t *Tracker) vertexLabel(c int, labels []string) string {
	vs := t.vertices[c]
	parts := make([]string, 0, min(len(vs), maxLabelVertices)+1)
	for i, v := range vs {
		if i == maxLabelVertices {
			parts = append(parts, fmt.Sprintf("+%d", len(vs)-i))
			break
		}
		if v < len(labels) {
			parts = append(parts, escapeDOT(labels[v]))
		} else {
			parts = append(parts, fmt.Sprint(v))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

func escapeDOT(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// RenderSVG renders the separator tree as an SVG document via ToDOT and
// go-graphviz. Errors from initializing, parsing or rendering are wrapped
// with context.
func (t *Tracker) RenderSVG(ctx context.Context, labels []string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(t.ToDOT(labels)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
