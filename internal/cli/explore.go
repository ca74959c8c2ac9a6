package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ndorder/pkg/septree"
)

// exploreCommand creates the explore command, an interactive browser for
// separator trees.
func (c *CLI) exploreCommand() *cobra.Command {
	opts := &orderFlags{}

	cmd := &cobra.Command{
		Use:   "explore <matrix>",
		Short: "Browse the separator tree interactively",
		Long: `Order a matrix and browse the separator tree in the terminal.

Use the arrow keys (or j/k) to move, right/enter to expand a separator,
left to collapse it or jump to its parent, and q to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, flags *orderFlags) error {
	popts, err := flags.options(c, input)
	if err != nil {
		return err
	}
	res, err := c.execute(ctx, popts, flags.noCache, false)
	if err != nil {
		return err
	}
	if res.Ordering.NComp() == 0 {
		printInfo("Empty matrix, nothing to explore")
		return nil
	}

	model := NewTreeModel(res.Ordering.Tree, input)
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// =============================================================================
// TreeModel - Interactive separator tree browser
// =============================================================================

// maxListedVertices caps the vertex list shown for the selected component.
const maxListedVertices = 24

// treeRow is one visible line of the browser.
type treeRow struct {
	comp  int
	depth int
}

// TreeModel is the bubbletea model for browsing a separator tree.
type TreeModel struct {
	Tree     *septree.Tracker
	Title    string
	Cursor   int
	Offset   int
	Height   int
	Expanded map[int]bool

	rows []treeRow
}

// NewTreeModel creates a browser with the roots expanded one level.
func NewTreeModel(t *septree.Tracker, title string) TreeModel {
	m := TreeModel{
		Tree:     t,
		Title:    title,
		Height:   15,
		Expanded: make(map[int]bool),
	}
	for _, r := range t.Roots() {
		m.Expanded[r] = true
	}
	m.rebuild()
	return m
}

// rebuild flattens the expanded part of the tree in preorder.
func (m *TreeModel) rebuild() {
	m.rows = make([]treeRow, 0, len(m.rows))
	var walk func(c, depth int)
	walk = func(c, depth int) {
		m.rows = append(m.rows, treeRow{comp: c, depth: depth})
		if !m.Expanded[c] {
			return
		}
		for _, ch := range m.Tree.Children(c) {
			walk(ch, depth+1)
		}
	}
	for _, r := range m.Tree.Roots() {
		walk(r, 0)
	}
	if m.Cursor >= len(m.rows) {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.scroll()
}

func (m *TreeModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// Selected returns the component under the cursor, or -1 for an empty tree.
func (m TreeModel) Selected() int {
	if len(m.rows) == 0 {
		return -1
	}
	return m.rows[m.Cursor].comp
}

// Visible returns the number of rows currently shown.
func (m TreeModel) Visible() int { return len(m.rows) }

func (m TreeModel) Init() tea.Cmd {
	return nil
}

func (m TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.scroll()
			}
		case "down", "j":
			if m.Cursor < len(m.rows)-1 {
				m.Cursor++
				m.scroll()
			}
		case "right", "l", "enter":
			if c := m.Selected(); c >= 0 && len(m.Tree.Children(c)) > 0 && !m.Expanded[c] {
				m.Expanded = cloneExpanded(m.Expanded)
				m.Expanded[c] = true
				m.rebuild()
			}
		case "left", "h":
			m.collapseOrParent()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 10
		if m.Height < 5 {
			m.Height = 5
		}
		m.scroll()
	}
	return m, nil
}

// collapseOrParent collapses an expanded component, or moves the cursor to
// the parent of a collapsed one.
func (m *TreeModel) collapseOrParent() {
	c := m.Selected()
	if c < 0 {
		return
	}
	if m.Expanded[c] {
		m.Expanded = cloneExpanded(m.Expanded)
		delete(m.Expanded, c)
		m.rebuild()
		return
	}
	p := m.Tree.ParentOf(c)
	if p == septree.NoParent {
		return
	}
	for i, r := range m.rows {
		if r.comp == p {
			m.Cursor = i
			m.scroll()
			return
		}
	}
}

// cloneExpanded copies the expansion set so that earlier model values stay
// unchanged.
func cloneExpanded(in map[int]bool) map[int]bool {
	out := make(map[int]bool, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (m TreeModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Separator Tree"))
	if m.Title != "" {
		b.WriteString(StyleDim.Render("  " + m.Title))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  → expand  ← collapse  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		r := m.rows[i]
		c := r.comp

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		marker := "  "
		if len(m.Tree.Children(c)) > 0 {
			marker = "+ "
			if m.Expanded[c] {
				marker = "- "
			}
		}
		name := strings.Repeat("  ", r.depth) + marker + strconv.Itoa(c)
		rows = append(rows, []string{
			cursor,
			name,
			m.Tree.Kind(c).String(),
			strconv.Itoa(len(m.Tree.Vertices(c))),
			strconv.Itoa(m.Tree.SubtreeSize(c)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Component", "Kind", "Vertices", "Subtree").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.rows) {
				return lipgloss.NewStyle()
			}
			c := m.rows[idx].comp
			base := lipgloss.NewStyle()
			if col >= 3 {
				base = base.Align(lipgloss.Right)
			}
			if m.Tree.Kind(c) == septree.Separator {
				base = base.Inherit(styleSeparator)
			} else {
				base = base.Inherit(styleLeaf)
			}
			if idx == m.Cursor {
				return base.Bold(true)
			}
			return base.Faint(col >= 3)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	if c := m.Selected(); c >= 0 {
		b.WriteString(m.detail(c))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.rows))))

	return b.String()
}

// detail describes component c below the table.
func (m TreeModel) detail(c int) string {
	verts := m.Tree.Vertices(c)
	shown := verts
	if len(shown) > maxListedVertices {
		shown = shown[:maxListedVertices]
	}
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = strconv.Itoa(v)
	}
	list := strings.Join(parts, " ")
	if len(verts) > len(shown) {
		list += fmt.Sprintf(" … (%d more)", len(verts)-len(shown))
	}

	parent := "root"
	if p := m.Tree.ParentOf(c); p != septree.NoParent {
		parent = strconv.Itoa(p)
	}
	return fmt.Sprintf("  %s %s  %s %s  %s %s\n  %s",
		StyleDim.Render("depth"), StyleNumber.Render(strconv.Itoa(m.Tree.Depth(c))),
		StyleDim.Render("parent"), StyleNumber.Render(parent),
		StyleDim.Render("children"), StyleNumber.Render(strconv.Itoa(len(m.Tree.Children(c)))),
		StyleValue.Render(list))
}
