package nd

import (
	"fmt"

	"github.com/matzehuels/ndorder/pkg/septree"
)

// Compose concatenates the components of a separator tree into a global
// permutation. Roots are visited in increasing id order; within a subtree
// the children are emitted first, in increasing id order, followed by the
// component's own vertices. Separators therefore come after everything they
// separate.
//
// orders[c] is the elimination order of component c as a permutation of
// indices into t.Vertices(c). A missing or nil entry keeps the registered
// vertex order.
//
// Returns an error wrapping ErrNotPermutation if a local order is malformed
// or the tree does not cover every vertex exactly once.
func Compose(t *septree.Tracker, orders [][]int) ([]int, error) {
	perm := make([]int, 0, t.N())
	for _, c := range t.Postorder() {
		verts := t.Vertices(c)
		var local []int
		if c < len(orders) {
			local = orders[c]
		}
		if local == nil {
			perm = append(perm, verts...)
			continue
		}
		if err := CheckPermutation(local, len(verts)); err != nil {
			return nil, fmt.Errorf("component %d: %w", c, err)
		}
		for _, i := range local {
			perm = append(perm, verts[i])
		}
	}
	if err := CheckPermutation(perm, t.N()); err != nil {
		return nil, err
	}
	return perm, nil
}
