package nd

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/graph"
	"github.com/matzehuels/ndorder/pkg/observability"
	"github.com/matzehuels/ndorder/pkg/septree"
)

// Engine computes nested dissection orderings. It holds only its
// collaborators and a logger, so one Engine may serve concurrent calls to
// [Engine.Order] as long as the collaborators allow it.
type Engine struct {
	oracle SeparatorOracle
	leaves LeafOrderer
	logger *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for split and leaf decisions, which are
// logged at debug level.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an engine using the given collaborators. A nil oracle
// never splits, so every connected piece becomes a single leaf. A nil leaf
// orderer keeps leaves in natural order.
func NewEngine(oracle SeparatorOracle, leaves LeafOrderer, opts ...EngineOption) *Engine {
	e := &Engine{
		oracle: oracle,
		leaves: leaves,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Stats counts the decisions taken during one ordering.
type Stats struct {
	Separators  int `json:"separators"`
	Leaves      int `json:"leaves"`
	OracleCalls int `json:"oracle_calls"`
	Rejected    int `json:"rejected"`
	MaxDepth    int `json:"max_depth"`
	Components  int `json:"components"`
}

// counters is the concurrent form of Stats.
type counters struct {
	separators, leaves, oracleCalls, rejected, maxDepth atomic.Int64
}

func (c *counters) observeDepth(d int) {
	for {
		cur := c.maxDepth.Load()
		if int64(d) <= cur || c.maxDepth.CompareAndSwap(cur, int64(d)) {
			return
		}
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Separators:  int(c.separators.Load()),
		Leaves:      int(c.leaves.Load()),
		OracleCalls: int(c.oracleCalls.Load()),
		Rejected:    int(c.rejected.Load()),
		MaxDepth:    int(c.maxDepth.Load()),
	}
}

// Order computes a nested dissection ordering of g.
//
// The graph is split recursively: a subgraph smaller than
// opts.SmallThreshold, without edges, or without an acceptable separator
// becomes a leaf ordered by the leaf orderer; otherwise its separator is
// registered and both sides are processed with the separator as parent.
// With opts.SplitComponents, disconnected subgraphs first fan out into their
// connected components.
//
// Component ids follow the depth-first discovery order of that recursion
// whether or not opts.Workers enables concurrent processing.
//
// Errors carry the codes of package errors: INVALID_INPUT for a nil graph,
// INVALID_OPTIONS for out-of-range options and ORDERING_FAILED when a
// collaborator fails, returns an invalid result, or ctx is cancelled. No
// partial result is returned on error.
func (e *Engine) Order(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "nil graph")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	hooks := observability.Dissection()
	hooks.OnOrderStart(ctx, g.Mode().String(), g.NodeCount(), g.NumEdges())

	res, err := e.order(ctx, g, opts)

	ncomp := 0
	if res != nil {
		ncomp = res.NComp()
	}
	hooks.OnOrderComplete(ctx, ncomp, time.Since(start), err)
	if err != nil {
		e.logger.Debug("ordering failed", "n", g.NodeCount(), "err", err)
		return nil, err
	}
	e.logger.Debug("ordering complete",
		"n", g.NodeCount(),
		"components", ncomp,
		"separators", res.Stats.Separators,
		"depth", res.Stats.MaxDepth,
		"duration", time.Since(start))
	return res, nil
}

func (e *Engine) order(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	s := &state{engine: e, opts: opts}
	s.family, s.ordered = opts.LeafOrdering.Family(g.Mode())
	if e.leaves == nil {
		s.ordered = false
	}

	root := &slot{}
	first := task{sub: g, dst: root}
	var err error
	if opts.Workers > 1 {
		err = s.runParallel(ctx, first, opts.Workers)
	} else {
		err = s.runSequential(ctx, first)
	}
	if err != nil {
		return nil, err
	}

	tree, orders, err := assemble(root, g.NodeCount())
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeOrderingFailed, err, "assemble separator tree")
	}
	if err := tree.Validate(); err != nil {
		return nil, errs.Wrap(errs.ErrCodeOrderingFailed, err, "separator tree")
	}
	perm, err := Compose(tree, orders)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeOrderingFailed, err, "compose permutation")
	}

	stats := s.stats.snapshot()
	stats.Components = tree.Len()
	return newResult(tree, orders, perm, stats), nil
}

// assemble registers a finished plan in preorder: each separator before its
// A side, the A side before the B side, and fan-out parts in order. This is
// the id order of the plain recursive formulation.
func assemble(root *slot, n int) (*septree.Tracker, [][]int, error) {
	tree := septree.NewTracker(n)
	var orders [][]int

	type frame struct {
		sl     *slot
		parent int
	}
	stack := []frame{{sl: root, parent: septree.NoParent}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if node := f.sl.node; node != nil {
			id, err := tree.Register(f.parent, node.kind, node.vertices)
			if err != nil {
				return nil, nil, err
			}
			orders = append(orders, node.order)
			if node.kind == septree.Separator {
				stack = append(stack, frame{node.sides[1], id}, frame{node.sides[0], id})
			}
			continue
		}
		for i := len(f.sl.parts) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.sl.parts[i], f.parent})
		}
	}
	return tree, orders, nil
}
