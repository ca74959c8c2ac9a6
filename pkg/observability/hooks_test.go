package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Dissection hooks
	d := NoopDissectionHooks{}
	d.OnOrderStart(ctx, "sym", 100, 300)
	d.OnSeparator(ctx, 0, 100, 10)
	d.OnLeaf(ctx, 3, 12)
	d.OnOrderComplete(ctx, 9, time.Second, nil)

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnLoadStart(ctx, "bcsstk01.mtx")
	p.OnLoadComplete(ctx, "bcsstk01.mtx", 48, 48, 400, time.Second, nil)
	p.OnAnalyzeComplete(ctx, 1024, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "ordering")
	c.OnCacheMiss(ctx, "ordering")
	c.OnCacheSet(ctx, "ordering", 1024)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/v1/order")
	h.OnResponse(ctx, "POST", "/v1/order", 200, time.Second)
	h.OnError(ctx, "POST", "/v1/order", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Dissection().(NoopDissectionHooks); !ok {
		t.Error("Dissection() should return NoopDissectionHooks by default")
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customDissection := &testDissectionHooks{}
	SetDissectionHooks(customDissection)
	if Dissection() != customDissection {
		t.Error("SetDissectionHooks should set custom hooks")
	}

	customPipeline := &testPipelineHooks{}
	SetPipelineHooks(customPipeline)
	if Pipeline() != customPipeline {
		t.Error("SetPipelineHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Dissection().(NoopDissectionHooks); !ok {
		t.Error("Reset() should restore NoopDissectionHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testDissectionHooks{}
	SetDissectionHooks(custom)

	// Setting nil should be ignored
	SetDissectionHooks(nil)

	if Dissection() != custom {
		t.Error("SetDissectionHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testDissectionHooks struct{ NoopDissectionHooks }
type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
