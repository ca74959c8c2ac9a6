package nd

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/observability"
	"github.com/matzehuels/ndorder/pkg/septree"
)

// state is the per-call context threaded through the work loop. Workers
// only touch the counters and the slots they own.
type state struct {
	engine  *Engine
	opts    Options
	family  LeafFamily
	ordered bool
	stats   counters
}

// task is one pending subgraph. Its outcome is written to dst.
type task struct {
	sub       *graph.Graph
	dst       *slot
	depth     int
	connected bool
}

// slot receives the outcome of processing one subgraph: a single component
// (node), a fan-out over connected components (parts), or nothing for an
// empty subgraph.
type slot struct {
	node  *planNode
	parts []*slot
}

// planNode is a component decided by a worker but not yet numbered.
type planNode struct {
	kind     septree.Kind
	vertices []int    // original vertex ids
	order    []int    // local elimination order over vertices; nil is identity
	sides    [2]*slot // separator children, A then B
}

func (s *state) runSequential(ctx context.Context, first task) error {
	stack := []task{first}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return errs.Wrap(errs.ErrCodeOrderingFailed, err, "ordering cancelled")
		}
		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next, err := s.process(ctx, t)
		if err != nil {
			return err
		}
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}
	return nil
}

// runParallel drains the work with up to workers goroutines. A worker hands
// a new subgraph to a fresh goroutine when the group has room and keeps it
// on its own stack otherwise, so no worker ever waits for another.
func (s *state) runParallel(ctx context.Context, first task, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var drain func(t task) error
	drain = func(t task) error {
		stack := []task{t}
		for len(stack) > 0 {
			if err := gctx.Err(); err != nil {
				return err
			}
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			next, err := s.process(gctx, cur)
			if err != nil {
				return err
			}
			for i := len(next) - 1; i >= 0; i-- {
				child := next[i]
				if !g.TryGo(func() error { return drain(child) }) {
					stack = append(stack, child)
				}
			}
		}
		return nil
	}

	g.Go(func() error { return drain(first) })
	err := g.Wait()
	if err == nil {
		return nil
	}
	if errs.GetCode(err) == "" {
		return errs.Wrap(errs.ErrCodeOrderingFailed, err, "ordering cancelled")
	}
	return err
}

// process decides the fate of one subgraph and returns the subgraphs it
// spawned.
func (s *state) process(ctx context.Context, t task) ([]task, error) {
	n := t.sub.NodeCount()
	if n == 0 {
		return nil, nil
	}
	s.stats.observeDepth(t.depth)

	if s.opts.SplitComponents && !t.connected && n > 1 {
		if comps := t.sub.Components(); len(comps) > 1 {
			s.engine.logger.Debug("split components", "depth", t.depth, "size", n, "components", len(comps))
			t.dst.parts = make([]*slot, len(comps))
			next := make([]task, len(comps))
			for i, c := range comps {
				t.dst.parts[i] = &slot{}
				next[i] = task{sub: t.sub.Induce(c), dst: t.dst.parts[i], depth: t.depth, connected: true}
			}
			return next, nil
		}
	}

	if n <= 1 || n < s.opts.SmallThreshold || t.sub.NumEdges() == 0 {
		return nil, s.leaf(ctx, t)
	}

	sep, ok, err := s.separate(ctx, t)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.stats.rejected.Add(1)
		return nil, s.leaf(ctx, t)
	}

	node := &planNode{
		kind:     septree.Separator,
		vertices: t.sub.OriginalsOf(sep.Separator),
		sides:    [2]*slot{{}, {}},
	}
	t.dst.node = node
	s.stats.separators.Add(1)
	observability.Dissection().OnSeparator(ctx, t.depth, n, len(sep.Separator))
	s.engine.logger.Debug("separator accepted",
		"depth", t.depth,
		"size", n,
		"separator", len(sep.Separator),
		"a", len(sep.A),
		"b", len(sep.B))

	return []task{
		{sub: t.sub.Induce(sep.A), dst: node.sides[0], depth: t.depth + 1},
		{sub: t.sub.Induce(sep.B), dst: node.sides[1], depth: t.depth + 1},
	}, nil
}

// separate asks the oracle for a separator and applies the acceptance rule.
// The boolean is false when the subgraph must become a leaf instead.
func (s *state) separate(ctx context.Context, t task) (Separation, bool, error) {
	oracle := s.engine.oracle
	if oracle == nil {
		return Separation{}, false, nil
	}
	n := t.sub.NodeCount()
	s.stats.oracleCalls.Add(1)
	sep, err := oracle.FindSeparator(ctx, t.sub)
	if errors.Is(err, ErrPartitionFailed) {
		s.engine.logger.Debug("partition failed", "depth", t.depth, "size", n)
		return Separation{}, false, nil
	}
	if err != nil {
		return Separation{}, false, errs.Wrap(errs.ErrCodeOrderingFailed, err, "separator oracle on %d vertices", n)
	}
	if err := CheckSeparation(t.sub, sep); err != nil {
		return Separation{}, false, errs.Wrap(errs.ErrCodeOrderingFailed, err, "separator oracle on %d vertices", n)
	}
	// Equality rejects. An empty separator cannot be registered as a
	// component and is rejected as well.
	if len(sep.Separator) == 0 || float64(len(sep.Separator)) >= s.opts.SeparatorQuality*float64(n) {
		s.engine.logger.Debug("separator rejected", "depth", t.depth, "size", n, "separator", len(sep.Separator))
		return Separation{}, false, nil
	}
	return sep, true, nil
}

// leaf orders t.sub directly and records it as a leaf component.
func (s *state) leaf(ctx context.Context, t task) error {
	n := t.sub.NodeCount()
	var order []int
	if s.ordered && n > 1 {
		local, err := s.engine.leaves.OrderLeaf(ctx, t.sub, s.family)
		if err != nil {
			return errs.Wrap(errs.ErrCodeOrderingFailed, err, "leaf orderer on %d vertices", n)
		}
		if err := CheckPermutation(local, n); err != nil {
			return errs.Wrap(errs.ErrCodeOrderingFailed, err, "leaf orderer on %d vertices", n)
		}
		order = slices.Clone(local)
	}
	t.dst.node = &planNode{kind: septree.Leaf, vertices: t.sub.Vertices(), order: order}
	s.stats.leaves.Add(1)
	observability.Dissection().OnLeaf(ctx, t.depth, n)
	s.engine.logger.Debug("leaf", "depth", t.depth, "size", n)
	return nil
}
