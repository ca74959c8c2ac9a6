package nd

import (
	"slices"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/septree"
)

// Result is the outcome of one ordering.
type Result struct {
	// Perm lists the original vertices in elimination order: Perm[k] is the
	// vertex placed at position k.
	Perm []int `json:"perm"`

	// Parent is the separator tree: Parent[c] is the separator component c
	// was split from, or septree.NoParent for roots.
	Parent []int `json:"parent"`

	// Membership maps every vertex to its component.
	Membership []int `json:"membership"`

	// Kinds records whether each component is a leaf or a separator.
	Kinds []septree.Kind `json:"kinds"`

	// Stats counts the decisions taken while ordering.
	Stats Stats `json:"stats"`

	// Tree is the tracker the arrays were read from.
	Tree *septree.Tracker `json:"-"`

	orders [][]int
}

func newResult(tree *septree.Tracker, orders [][]int, perm []int, stats Stats) *Result {
	return &Result{
		Perm:       perm,
		Parent:     tree.Parents(),
		Membership: tree.Membership(),
		Kinds:      tree.Kinds(),
		Stats:      stats,
		Tree:       tree,
		orders:     orders,
	}
}

// NComp returns the number of components.
func (r *Result) NComp() int { return len(r.Parent) }

// OneBased returns copies of the permutation, parent array and membership
// using 1-based indices. Roots get parent 0.
func (r *Result) OneBased() (perm, parent, membership []int) {
	shift := func(in []int) []int {
		out := make([]int, len(in))
		for i, v := range in {
			out[i] = v + 1
		}
		return out
	}
	return shift(r.Perm), shift(r.Parent), shift(r.Membership)
}

// ComponentOrder returns the vertices of component c in elimination order.
func (r *Result) ComponentOrder(c int) []int {
	verts := r.Tree.Vertices(c)
	if c >= len(r.orders) || r.orders[c] == nil {
		return slices.Clone(verts)
	}
	out := make([]int, len(verts))
	for k, i := range r.orders[c] {
		out[k] = verts[i]
	}
	return out
}

// subtreeOrder appends the vertices of c's subtree in composed order.
func (r *Result) subtreeOrder(c int, out []int) []int {
	for _, ch := range r.Tree.Children(c) {
		out = r.subtreeOrder(ch, out)
	}
	return append(out, r.ComponentOrder(c)...)
}

// Collapse merges every separator whose subtree holds fewer than minSize
// vertices, together with its whole subtree, into a single leaf. The merged
// leaf keeps the subtree's elimination order, so the permutation is
// unchanged. Components are renumbered in the original id order.
//
// A minSize of 1 or less returns an unchanged copy.
func (r *Result) Collapse(minSize int) (*Result, error) {
	tree := septree.NewTracker(r.Tree.N())
	var orders [][]int
	remap := make([]int, r.NComp())
	for c := range remap {
		remap[c] = septree.NoParent
	}

	// Ids are assigned in preorder, so a subtree is the contiguous id range
	// starting at its root.
	for c := 0; c < r.NComp(); c++ {
		parent := r.Parent[c]
		if parent != septree.NoParent {
			parent = remap[parent]
			if parent == septree.NoParent {
				continue // inside a collapsed subtree
			}
		}
		kind := r.Kinds[c]
		var verts, order []int
		if kind == septree.Separator && r.Tree.SubtreeSize(c) < minSize {
			kind = septree.Leaf
			verts = r.subtreeOrder(c, nil)
		} else {
			verts = r.Tree.Vertices(c)
			if c < len(r.orders) {
				order = r.orders[c]
			}
		}
		id, err := tree.Register(parent, kind, verts)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "collapse component %d", c)
		}
		orders = append(orders, order)
		if kind == septree.Separator {
			remap[c] = id
		}
	}

	perm, err := Compose(tree, orders)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "collapse")
	}
	stats := r.Stats
	stats.Components = tree.Len()
	return newResult(tree, orders, perm, stats), nil
}

// Restore rebuilds a Result from its arrays, for example after decoding a
// cached or stored ordering. If kinds is nil, components with children are
// taken to be separators and all others leaves.
//
// The arrays must describe a tree the engine could have produced: parents
// precede children and perm is the composed order of the tree. Anything else
// is an INVALID_INPUT error.
func Restore(perm, parent, membership []int, kinds []septree.Kind) (*Result, error) {
	n := len(membership)
	if err := CheckPermutation(perm, n); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "restore permutation")
	}
	ncomp := len(parent)
	if kinds == nil {
		kinds = make([]septree.Kind, ncomp)
		for c, p := range parent {
			if p >= 0 && p < c {
				kinds[p] = septree.Separator
			}
		}
	}
	if len(kinds) != ncomp {
		return nil, errs.New(errs.ErrCodeInvalidInput, "restore: %d kinds for %d components", len(kinds), ncomp)
	}

	verts := make([][]int, ncomp)
	for _, v := range perm {
		c := membership[v]
		if c < 0 || c >= ncomp {
			return nil, errs.New(errs.ErrCodeInvalidInput, "restore: vertex %d in unknown component %d", v, c)
		}
		verts[c] = append(verts[c], v)
	}

	tree := septree.NewTracker(n)
	for c := 0; c < ncomp; c++ {
		if _, err := tree.Register(parent[c], kinds[c], verts[c]); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "restore component %d", c)
		}
	}
	composed, err := Compose(tree, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "restore")
	}
	if !slices.Equal(composed, perm) {
		return nil, errs.New(errs.ErrCodeInvalidInput, "restore: permutation does not follow the separator tree")
	}
	return newResult(tree, nil, slices.Clone(perm), Stats{Components: ncomp}), nil
}
