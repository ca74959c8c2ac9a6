package cli

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ndorder/pkg/observability"
)

const (
	// traceDepth is the deepest level whose separators are logged one by one.
	traceDepth = 4

	// heartbeatInterval spaces the periodic status lines of long orderings.
	heartbeatInterval = 10 * time.Second
)

// dissectionTrace logs engine events at debug level. Separators near the
// root are logged individually; below traceDepth only a periodic heartbeat
// with running totals is written.
//
// The engine calls hooks from several workers, so all state is guarded.
type dissectionTrace struct {
	logger *log.Logger

	mu         sync.Mutex
	separators int
	leaves     int
	sepVerts   int
	start      time.Time
	lastLog    time.Time
}

var _ observability.DissectionHooks = (*dissectionTrace)(nil)

func newDissectionTrace(l *log.Logger) *dissectionTrace {
	return &dissectionTrace{logger: l}
}

func (t *dissectionTrace) OnOrderStart(_ context.Context, mode string, n, edges int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.separators, t.leaves, t.sepVerts = 0, 0, 0
	t.start = time.Now()
	t.lastLog = t.start
	t.logger.Debug("ordering started", "mode", mode, "vertices", n, "edges", edges)
}

func (t *dissectionTrace) OnSeparator(_ context.Context, depth, size, sepSize int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.separators++
	t.sepVerts += sepSize
	if depth < traceDepth {
		t.logger.Debug("separator", "depth", depth, "size", size, "separator", sepSize)
	}
	t.heartbeat()
}

func (t *dissectionTrace) OnLeaf(_ context.Context, _, _ int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.leaves++
	t.heartbeat()
}

func (t *dissectionTrace) OnOrderComplete(_ context.Context, ncomp int, duration time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.logger.Debug("ordering failed", "err", err, "duration", duration)
		return
	}
	t.logger.Debug("ordering finished",
		"components", ncomp,
		"separators", t.separators,
		"leaves", t.leaves,
		"separator_vertices", t.sepVerts,
		"duration", duration)
}

// heartbeat must be called with mu held.
func (t *dissectionTrace) heartbeat() {
	if time.Since(t.lastLog) < heartbeatInterval {
		return
	}
	t.lastLog = time.Now()
	t.logger.Debug("still ordering",
		"separators", t.separators,
		"leaves", t.leaves,
		"elapsed", time.Since(t.start).Round(time.Second))
}
