package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	b := NoopBuildHooks{}
	b.OnBuildStart(ctx, "build-1", 12)
	b.OnBuildComplete(ctx, "build-1", 12, false, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "font")
	c.OnCacheMiss(ctx, "font")
	c.OnCacheSet(ctx, "font", 1024)

	s := NoopServeHooks{}
	s.OnAssetRequest(ctx, "woff2", 200)
	s.OnRebuild(ctx, time.Second, 0)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Build() should return NoopBuildHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Serve().(NoopServeHooks); !ok {
		t.Error("Serve() should return NoopServeHooks by default")
	}

	customBuild := &testBuildHooks{}
	SetBuildHooks(customBuild)
	if Build() != customBuild {
		t.Error("SetBuildHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customServe := &testServeHooks{}
	SetServeHooks(customServe)
	if Serve() != customServe {
		t.Error("SetServeHooks should set custom hooks")
	}

	Reset()
	if _, ok := Build().(NoopBuildHooks); !ok {
		t.Error("Reset() should restore NoopBuildHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testBuildHooks{}
	SetBuildHooks(custom)
	SetBuildHooks(nil)

	if Build() != custom {
		t.Error("SetBuildHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testBuildHooks struct{ NoopBuildHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testServeHooks struct{ NoopServeHooks }
