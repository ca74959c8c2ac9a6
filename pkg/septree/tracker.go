package septree

import (
	"errors"
	"fmt"
	"slices"
)

// NoParent is the parent id of root components.
const NoParent = -1

// Kind distinguishes separator components from leaf components.
type Kind uint8

const (
	// Leaf is a subgraph ordered directly by the leaf orderer.
	Leaf Kind = iota
	// Separator is a vertex separator that split its subgraph in two.
	Separator
)

// String returns "leaf" or "separator".
func (k Kind) String() string {
	if k == Separator {
		return "separator"
	}
	return "leaf"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes "leaf" or "separator".
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "leaf":
		*k = Leaf
	case "separator":
		*k = Separator
	default:
		return fmt.Errorf("unknown component kind %q", b)
	}
	return nil
}

var (
	// ErrUnknownParent is returned when a parent id is neither NoParent nor a
	// previously registered separator.
	ErrUnknownParent = errors.New("unknown parent component")

	// ErrVertexAssigned is returned when a vertex already belongs to a
	// component.
	ErrVertexAssigned = errors.New("vertex already assigned")

	// ErrVertexOutOfRange is returned for vertices outside 0..n-1.
	ErrVertexOutOfRange = errors.New("vertex out of range")

	// ErrEmptyComponent is returned when registering a component without
	// vertices.
	ErrEmptyComponent = errors.New("empty component")

	// ErrIncomplete is returned by Validate when some vertex has no
	// component.
	ErrIncomplete = errors.New("vertex not assigned to any component")
)

// Tracker accumulates components for a graph with n vertices.
//
// A Tracker is not safe for concurrent mutation. The dissection engine
// registers components from a single goroutine.
type Tracker struct {
	n          int
	parent     []int
	kind       []Kind
	vertices   [][]int
	children   [][]int
	membership []int
	assigned   int
}

// NewTracker returns an empty tracker for vertices 0..n-1.
func NewTracker(n int) *Tracker {
	m := make([]int, n)
	for i := range m {
		m[i] = NoParent
	}
	return &Tracker{n: n, membership: m}
}

// Register adds a component owning the given vertices and returns its id.
// Ids are assigned contiguously starting at 0. The vertices slice is copied.
//
// Register is atomic: on error the tracker is unchanged.
func (t *Tracker) Register(parent int, kind Kind, vertices []int) (int, error) {
	if parent != NoParent {
		if parent < 0 || parent >= len(t.parent) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownParent, parent)
		}
		if t.kind[parent] != Separator {
			return 0, fmt.Errorf("%w: %d is a leaf", ErrUnknownParent, parent)
		}
	}
	if len(vertices) == 0 {
		return 0, ErrEmptyComponent
	}
	id := len(t.parent)
	for i, v := range vertices {
		if v < 0 || v >= t.n {
			t.rollback(vertices[:i])
			return 0, fmt.Errorf("%w: %d", ErrVertexOutOfRange, v)
		}
		if t.membership[v] != NoParent {
			t.rollback(vertices[:i])
			return 0, fmt.Errorf("%w: %d owned by component %d", ErrVertexAssigned, v, t.membership[v])
		}
		t.membership[v] = id
	}

	t.parent = append(t.parent, parent)
	t.kind = append(t.kind, kind)
	t.vertices = append(t.vertices, slices.Clone(vertices))
	t.children = append(t.children, nil)
	if parent != NoParent {
		t.children[parent] = append(t.children[parent], id)
	}
	t.assigned += len(vertices)
	return id, nil
}

func (t *Tracker) rollback(done []int) {
	for _, v := range done {
		t.membership[v] = NoParent
	}
}

// N returns the number of vertices tracked.
func (t *Tracker) N() int { return t.n }

// Len returns the number of registered components.
func (t *Tracker) Len() int { return len(t.parent) }

// Assigned returns how many vertices belong to a component.
func (t *Tracker) Assigned() int { return t.assigned }

// MembershipOf returns the component owning v, or NoParent if v is not yet
// assigned.
func (t *Tracker) MembershipOf(v int) int { return t.membership[v] }

// ParentOf returns the parent separator of component c, or NoParent.
func (t *Tracker) ParentOf(c int) int { return t.parent[c] }

// Kind returns the kind of component c.
func (t *Tracker) Kind(c int) Kind { return t.kind[c] }

// Vertices returns the vertices of component c in registration order. The
// slice aliases the tracker and must not be modified.
func (t *Tracker) Vertices(c int) []int { return t.vertices[c] }

// Children returns the child components of c in increasing id order. The
// slice aliases the tracker and must not be modified.
func (t *Tracker) Children(c int) []int { return t.children[c] }

// Roots returns the root components in increasing id order.
func (t *Tracker) Roots() []int {
	var roots []int
	for c, p := range t.parent {
		if p == NoParent {
			roots = append(roots, c)
		}
	}
	return roots
}

// Parents returns a copy of the parent array.
func (t *Tracker) Parents() []int { return slices.Clone(t.parent) }

// Membership returns a copy of the vertex-to-component map.
func (t *Tracker) Membership() []int { return slices.Clone(t.membership) }

// Kinds returns a copy of the component kinds.
func (t *Tracker) Kinds() []Kind { return slices.Clone(t.kind) }

// Depth returns the number of ancestors of component c.
func (t *Tracker) Depth(c int) int {
	d := 0
	for p := t.parent[c]; p != NoParent; p = t.parent[p] {
		d++
	}
	return d
}

// SubtreeSize returns the number of vertices in component c and all of its
// descendants.
func (t *Tracker) SubtreeSize(c int) int {
	size := len(t.vertices[c])
	for _, ch := range t.children[c] {
		size += t.SubtreeSize(ch)
	}
	return size
}

// Postorder returns every component id in postorder: roots in increasing id
// order, and within each subtree the children in increasing id order before
// the component itself.
func (t *Tracker) Postorder() []int {
	out := make([]int, 0, len(t.parent))
	type frame struct {
		c    int
		next int
	}
	for _, r := range t.Roots() {
		stack := []frame{{c: r}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(t.children[top.c]) {
				ch := t.children[top.c][top.next]
				top.next++
				stack = append(stack, frame{c: ch})
				continue
			}
			out = append(out, top.c)
			stack = stack[:len(stack)-1]
		}
	}
	return out
}

// Validate checks that every vertex is owned by exactly one component and
// that the parent array is a forest with parents preceding children.
func (t *Tracker) Validate() error {
	if t.assigned != t.n {
		for v, c := range t.membership {
			if c == NoParent {
				return fmt.Errorf("%w: %d", ErrIncomplete, v)
			}
		}
	}
	for c, p := range t.parent {
		if p != NoParent && (p >= c || t.kind[p] != Separator) {
			return fmt.Errorf("%w: component %d has parent %d", ErrUnknownParent, c, p)
		}
		for _, v := range t.vertices[c] {
			if t.membership[v] != c {
				return fmt.Errorf("%w: %d listed by %d but owned by %d", ErrVertexAssigned, v, c, t.membership[v])
			}
		}
	}
	return nil
}
