package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/ndorder/pkg/cache"
	errs "github.com/matzehuels/ndorder/pkg/errors"
	"github.com/matzehuels/ndorder/pkg/graph"
	pkgio "github.com/matzehuels/ndorder/pkg/io"
	"github.com/matzehuels/ndorder/pkg/mindegree"
	"github.com/matzehuels/ndorder/pkg/nd"
	"github.com/matzehuels/ndorder/pkg/observability"
	"github.com/matzehuels/ndorder/pkg/separator"
	"github.com/matzehuels/ndorder/pkg/sparse"
	"github.com/matzehuels/ndorder/pkg/symbolic"
)

// Runner executes pipeline stages with caching.
// Both CLI and API use it so the caching logic lives in one place.
//
// The Runner keeps no per-run state; multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs load, order and (optionally) analyze.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	result := &Result{RunID: uuid.NewString()}
	logger := opts.Logger.With("run", result.RunID[:8])

	// Stage 1: Load
	loadStart := time.Now()
	p, err := r.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Pattern = p
	result.PatternHash = PatternHash(p)
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NRow, result.Stats.NCol, result.Stats.NNZ = p.NRow, p.NCol, p.NNZ()

	logger.Info("loaded pattern",
		"rows", p.NRow,
		"cols", p.NCol,
		"nnz", p.NNZ(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Order
	orderStart := time.Now()
	g, res, hit, err := r.OrderWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Mode = g.Mode()
	result.Ordering = res
	result.Stats.Vertices, result.Stats.Edges = g.NodeCount(), g.NumEdges()
	result.Stats.OrderTime = time.Since(orderStart)
	result.CacheInfo.OrderHit = hit

	logger.Info("computed ordering",
		"mode", g.Mode(),
		"vertices", g.NodeCount(),
		"edges", g.NumEdges(),
		"components", res.NComp(),
		"cached", hit,
		"duration", result.Stats.OrderTime)

	if !opts.Analyze {
		return result, nil
	}

	// Stage 3: Analyze
	analyzeStart := time.Now()
	fill, fillHit, err := r.AnalyzeWithCacheInfo(ctx, g, result.PatternHash, res.Perm)
	if err != nil {
		return nil, err
	}
	baseline, baseHit, err := r.AnalyzeWithCacheInfo(ctx, g, result.PatternHash, nil)
	if err != nil {
		return nil, err
	}
	result.Fill, result.Baseline = &fill, &baseline
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.CacheInfo.AnalyzeHit = fillHit && baseHit

	logger.Info("analyzed fill",
		"nnz_l", fill.NNZL,
		"natural_nnz_l", baseline.NNZL,
		"height", fill.Height,
		"duration", result.Stats.AnalyzeTime)

	return result, nil
}

// Load returns opts.Pattern if set and otherwise reads opts.Input.
func (r *Runner) Load(ctx context.Context, opts Options) (*sparse.Pattern, error) {
	if opts.Pattern != nil {
		return opts.Pattern, nil
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Input)
	start := time.Now()

	p, err := pkgio.ImportMatrix(opts.Input)
	if err != nil {
		hooks.OnLoadComplete(ctx, opts.Input, 0, 0, 0, time.Since(start), err)
		return nil, fmt.Errorf("load %s: %w", opts.Input, err)
	}
	hooks.OnLoadComplete(ctx, opts.Input, p.NRow, p.NCol, p.NNZ(), time.Since(start), nil)
	return p, nil
}

// OrderWithCacheInfo builds the graph of p and orders it, consulting the
// cache first unless opts.Refresh is set. It reports whether the ordering
// came from the cache.
func (r *Runner) OrderWithCacheInfo(ctx context.Context, p *sparse.Pattern, opts Options) (*graph.Graph, *nd.Result, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	mode, ndOpts, err := opts.Resolve()
	if err != nil {
		return nil, nil, false, err
	}

	g, err := graph.Build(p, mode)
	if err != nil {
		return nil, nil, false, err
	}

	key := r.Keyer.OrderingKey(PatternHash(p), opts.OrderingKeyOpts(mode, ndOpts))
	cacheable := opts.cacheable()
	if cacheable && !opts.Refresh {
		if res, ok := r.cachedOrdering(ctx, key, g.NodeCount(), opts.Logger); ok {
			return g, res, true, nil
		}
	}

	res, err := r.order(ctx, g, ndOpts, opts)
	if err != nil {
		return nil, nil, false, err
	}

	if !cacheable {
		return g, res, false, nil
	}
	var buf bytes.Buffer
	if err := pkgio.WriteOrdering(&buf, pkgio.NewOrdering(res, mode.String(), false)); err == nil {
		r.store(ctx, "ordering", key, buf.Bytes(), cache.TTLOrdering, opts.Logger)
	}
	return g, res, false, nil
}

// Order is OrderWithCacheInfo without the cache hit flag.
func (r *Runner) Order(ctx context.Context, p *sparse.Pattern, opts Options) (*graph.Graph, *nd.Result, error) {
	g, res, _, err := r.OrderWithCacheInfo(ctx, p, opts)
	return g, res, err
}

func (r *Runner) order(ctx context.Context, g *graph.Graph, ndOpts nd.Options, opts Options) (*nd.Result, error) {
	oracle, leaves := opts.Oracle, opts.Leaves
	if oracle == nil {
		oracle = separator.LevelSet{}
	}
	if leaves == nil {
		leaves = mindegree.Orderer{}
	}
	engine := nd.NewEngine(oracle, leaves, nd.WithLogger(opts.Logger))
	res, err := engine.Order(ctx, g, ndOpts)
	if err != nil {
		return nil, err
	}
	if opts.Collapse > 1 {
		before := res.NComp()
		if res, err = res.Collapse(opts.Collapse); err != nil {
			return nil, err
		}
		opts.Logger.Debug("collapsed separator tree", "min_size", opts.Collapse, "before", before, "after", res.NComp())
	}
	return res, nil
}

func (r *Runner) cachedOrdering(ctx context.Context, key string, n int, logger *log.Logger) (*nd.Result, bool) {
	data, ok := r.lookup(ctx, "ordering", key, logger)
	if !ok {
		return nil, false
	}
	doc, err := pkgio.ReadOrdering(bytes.NewReader(data))
	if err != nil || doc.N != n {
		logger.Debug("discarding cached ordering", "err", err)
		return nil, false
	}
	res, err := doc.Result()
	if err != nil {
		logger.Debug("discarding cached ordering", "err", err)
		return nil, false
	}
	return res, true
}

// AnalyzeWithCacheInfo computes the symbolic statistics of eliminating g in
// the order perm; a nil perm means the natural order. patternHash
// identifies the pattern g was built from and may be empty to bypass the
// cache.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g *graph.Graph, patternHash string, perm []int) (symbolic.Stats, bool, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	if perm == nil {
		perm = naturalOrder(g.NodeCount())
	}

	var key string
	if patternHash != "" {
		key = r.Keyer.FillKey(patternHash+":"+g.Mode().String(), cache.HashInts(perm))
		if data, ok := r.lookup(ctx, "fill", key, r.Logger); ok {
			var s symbolic.Stats
			if err := json.Unmarshal(data, &s); err == nil {
				hooks.OnAnalyzeComplete(ctx, s.Fill, time.Since(start), nil)
				return s, true, nil
			}
		}
	}

	s, err := symbolic.Analyze(ctx, g, perm)
	if err != nil {
		hooks.OnAnalyzeComplete(ctx, 0, time.Since(start), err)
		return symbolic.Stats{}, false, errs.Wrap(errs.ErrCodeInternal, err, "analyze fill")
	}
	hooks.OnAnalyzeComplete(ctx, s.Fill, time.Since(start), nil)

	if key != "" {
		if data, err := json.Marshal(s); err == nil {
			r.store(ctx, "fill", key, data, cache.TTLFill, r.Logger)
		}
	}
	return s, false, nil
}

// lookup reads key, retrying transient backend failures. Errors degrade to
// misses.
func (r *Runner) lookup(ctx context.Context, keyType, key string, logger *log.Logger) ([]byte, bool) {
	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		logger.Warn("cache lookup failed", "type", keyType, "err", err)
		hit = false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration, logger *log.Logger) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// PatternHash returns the content hash of a pattern.
func PatternHash(p *sparse.Pattern) string {
	return cache.HashInts([]int{p.NRow, p.NCol}, p.ColPtr, p.RowIdx)
}

func naturalOrder(n int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	return perm
}
