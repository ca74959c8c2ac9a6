package septree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sevenPath registers the tree nested dissection builds for a 7-vertex path
// cut in the middle with leaves of size one.
func sevenPath(t *testing.T) *Tracker {
	t.Helper()
	tr := NewTracker(7)
	steps := []struct {
		parent int
		kind   Kind
		verts  []int
	}{
		{NoParent, Separator, []int{3}},
		{0, Separator, []int{1}},
		{1, Leaf, []int{0}},
		{1, Leaf, []int{2}},
		{0, Separator, []int{5}},
		{4, Leaf, []int{4}},
		{4, Leaf, []int{6}},
	}
	for i, s := range steps {
		id, err := tr.Register(s.parent, s.kind, s.verts)
		require.NoError(t, err)
		require.Equal(t, i, id)
	}
	return tr
}

func TestTrackerRegister(t *testing.T) {
	tr := sevenPath(t)
	require.NoError(t, tr.Validate())

	assert.Equal(t, 7, tr.Len())
	assert.Equal(t, 7, tr.N())
	assert.Equal(t, []int{-1, 0, 1, 1, 0, 4, 4}, tr.Parents())
	assert.Equal(t, []int{2, 1, 3, 0, 5, 4, 6}, tr.Membership())
	assert.Equal(t, 4, tr.MembershipOf(5))
	assert.Equal(t, 0, tr.ParentOf(4))
	assert.Equal(t, Separator, tr.Kind(1))
	assert.Equal(t, Leaf, tr.Kind(6))
	assert.Equal(t, []int{1, 4}, tr.Children(0))
	assert.Equal(t, []int{0}, tr.Roots())
	assert.Equal(t, 2, tr.Depth(6))
	assert.Equal(t, 3, tr.SubtreeSize(4))
	assert.Equal(t, 7, tr.SubtreeSize(0))
}

func TestTrackerPostorder(t *testing.T) {
	tr := sevenPath(t)
	assert.Equal(t, []int{2, 3, 1, 5, 6, 4, 0}, tr.Postorder())

	forest := NewTracker(3)
	_, _ = forest.Register(NoParent, Leaf, []int{2})
	_, _ = forest.Register(NoParent, Leaf, []int{0, 1})
	assert.Equal(t, []int{0, 1}, forest.Postorder())
	assert.Equal(t, []int{0, 1}, forest.Roots())
}

func TestTrackerRegisterErrors(t *testing.T) {
	tests := []struct {
		name   string
		parent int
		kind   Kind
		verts  []int
		want   error
	}{
		{"unknown parent", 5, Leaf, []int{1}, ErrUnknownParent},
		{"leaf parent", 1, Leaf, []int{1}, ErrUnknownParent},
		{"negative parent", -3, Leaf, []int{1}, ErrUnknownParent},
		{"assigned vertex", 0, Leaf, []int{2, 0}, ErrVertexAssigned},
		{"out of range", 0, Leaf, []int{2, 9}, ErrVertexOutOfRange},
		{"duplicate in call", 0, Leaf, []int{3, 3}, ErrVertexAssigned},
		{"empty", 0, Leaf, nil, ErrEmptyComponent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTracker(4)
			_, err := tr.Register(NoParent, Separator, []int{0})
			require.NoError(t, err)
			_, err = tr.Register(0, Leaf, []int{1})
			require.NoError(t, err)

			_, err = tr.Register(tt.parent, tt.kind, tt.verts)
			assert.ErrorIs(t, err, tt.want)

			// Failed registration leaves no trace.
			assert.Equal(t, 2, tr.Len())
			assert.Equal(t, 2, tr.Assigned())
			assert.Equal(t, NoParent, tr.MembershipOf(2))
			assert.Equal(t, NoParent, tr.MembershipOf(3))
		})
	}
}

func TestTrackerValidateIncomplete(t *testing.T) {
	tr := NewTracker(3)
	_, err := tr.Register(NoParent, Leaf, []int{0, 2})
	require.NoError(t, err)
	assert.ErrorIs(t, tr.Validate(), ErrIncomplete)

	_, err = tr.Register(NoParent, Leaf, []int{1})
	require.NoError(t, err)
	assert.NoError(t, tr.Validate())
}

func TestTrackerCopiesInput(t *testing.T) {
	tr := NewTracker(2)
	verts := []int{1, 0}
	_, err := tr.Register(NoParent, Leaf, verts)
	require.NoError(t, err)
	verts[0] = 99
	assert.Equal(t, []int{1, 0}, tr.Vertices(0))

	parents := tr.Parents()
	parents[0] = 42
	assert.Equal(t, NoParent, tr.ParentOf(0))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "leaf", Leaf.String())
	assert.Equal(t, "separator", Separator.String())
}

func TestToDOT(t *testing.T) {
	tr := sevenPath(t)
	dot := tr.ToDOT([]string{"a", "b", "c", "d"})

	assert.True(t, strings.HasPrefix(dot, "digraph SeparatorTree {"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(dot), "}"))
	for _, want := range []string{"rankdir=TB", "c0 -> c1;", "c4 -> c6;", "{d}", "{6}", "separator", "leaf"} {
		assert.Contains(t, dot, want)
	}
	assert.NotContains(t, dot, "-> c0;")
}

func TestToDOTTruncatesLargeComponents(t *testing.T) {
	tr := NewTracker(20)
	verts := make([]int, 20)
	for i := range verts {
		verts[i] = i
	}
	_, err := tr.Register(NoParent, Leaf, verts)
	require.NoError(t, err)
	assert.Contains(t, tr.ToDOT(nil), "+12}")
}

func TestToDOTEmpty(t *testing.T) {
	dot := NewTracker(0).ToDOT(nil)
	assert.Contains(t, dot, "digraph SeparatorTree {")
}

func TestKindText(t *testing.T) {
	b, err := Separator.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "separator", string(b))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("separator")))
	assert.Equal(t, Separator, k)
	require.NoError(t, k.UnmarshalText([]byte("leaf")))
	assert.Equal(t, Leaf, k)
	assert.Error(t, k.UnmarshalText([]byte("root")))
}
