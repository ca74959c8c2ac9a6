// Package observability provides hooks for metrics, tracing, and logging.
//
// The ordering library emits events without depending on any particular
// backend. Applications register hooks at startup; until they do, every hook
// is a no-op.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps the engine free
// of import cycles and of observability frameworks.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetDissectionHooks(&myDissectionHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Dissection().OnSeparator(ctx, depth, size, sepSize)
//
// # Concurrency
//
// With more than one worker the dissection engine calls its hooks from
// several goroutines at once. Custom implementations must be safe for
// concurrent use.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Dissection Hooks
// =============================================================================

// DissectionHooks receives events from the nested dissection engine.
type DissectionHooks interface {
	// OnOrderStart records the start of an ordering over n vertices and
	// edges undirected edges.
	OnOrderStart(ctx context.Context, mode string, n, edges int)

	// OnSeparator records an accepted separator of sepSize vertices that
	// split a subgraph of size vertices at the given depth.
	OnSeparator(ctx context.Context, depth, size, sepSize int)

	// OnLeaf records a subgraph ordered directly by the leaf orderer.
	OnLeaf(ctx context.Context, depth, size int)

	// OnOrderComplete records the end of an ordering.
	OnOrderComplete(ctx context.Context, ncomp int, duration time.Duration, err error)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the load, order and analyze stages.
type PipelineHooks interface {
	// Load events
	OnLoadStart(ctx context.Context, source string)
	OnLoadComplete(ctx context.Context, source string, nrow, ncol, nnz int, duration time.Duration, err error)

	// Analyze events
	OnAnalyzeComplete(ctx context.Context, fill int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP ordering service.
type HTTPHooks interface {
	// OnRequest records an incoming HTTP request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed HTTP response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that failed with an error.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDissectionHooks is a no-op implementation of DissectionHooks.
type NoopDissectionHooks struct{}

func (NoopDissectionHooks) OnOrderStart(context.Context, string, int, int)             {}
func (NoopDissectionHooks) OnSeparator(context.Context, int, int, int)                 {}
func (NoopDissectionHooks) OnLeaf(context.Context, int, int)                           {}
func (NoopDissectionHooks) OnOrderComplete(context.Context, int, time.Duration, error) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnLoadStart(context.Context, string) {}
func (NoopPipelineHooks) OnLoadComplete(context.Context, string, int, int, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnAnalyzeComplete(context.Context, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	dissectionHooks DissectionHooks = NoopDissectionHooks{}
	pipelineHooks   PipelineHooks   = NoopPipelineHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	httpHooks       HTTPHooks       = NoopHTTPHooks{}
	hooksMu         sync.RWMutex
)

// SetDissectionHooks registers custom dissection hooks.
// This should be called once at application startup before any ordering.
func SetDissectionHooks(h DissectionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		dissectionHooks = h
	}
}

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving requests.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Dissection returns the registered dissection hooks.
func Dissection() DissectionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return dissectionHooks
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	dissectionHooks = NoopDissectionHooks{}
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
