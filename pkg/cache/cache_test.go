package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "font:abc"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "font:abc", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "font:abc")
	if err != nil || !hit || string(data) != "payload" {
		t.Errorf("Get = %q, %v, %v; want payload hit", data, hit, err)
	}

	if err := c.Delete(ctx, "font:abc"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "font:abc"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "font:abc"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed from disk")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	p := c.path("k")
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDigest(t *testing.T) {
	sum := func(pairs ...string) string {
		d := NewDigest()
		for i := 0; i < len(pairs); i += 2 {
			d.Add(pairs[i], []byte(pairs[i+1]))
		}
		return d.Sum()
	}

	if sum("a.svg", "<svg/>") != sum("a.svg", "<svg/>") {
		t.Error("Digest should be deterministic")
	}
	if sum("a.svg", "xy", "b.svg", "z") == sum("a.svg", "x", "b.svg", "yz") {
		t.Error("moving bytes between blobs must change the digest")
	}
	if sum("a.svg", "x") == sum("b.svg", "x") {
		t.Error("renaming a blob must change the digest")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	opts := FontKeyOpts{FontName: "AppIcons", Formats: []string{"woff2"}, StartCodepoint: 0xE001}
	k1 := k.FontKey("hash123", opts)
	if k1 != k.FontKey("hash123", opts) {
		t.Error("FontKey should be deterministic")
	}
	if len(k1) < 6 || k1[:5] != "font:" {
		t.Errorf("FontKey should start with font: got %s", k1)
	}

	other := opts
	other.Formats = []string{"woff"}
	if k1 == k.FontKey("hash123", other) {
		t.Error("Different formats should produce different keys")
	}
	if k1 == k.FontKey("hash456", opts) {
		t.Error("Different sources should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "project:docs:")

	got := scoped.FontKey("h", FontKeyOpts{})
	want := "project:docs:" + inner.FontKey("h", FontKeyOpts{})
	if got != want {
		t.Errorf("ScopedKeyer FontKey = %s, want %s", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	got := scoped.FontKey("h", FontKeyOpts{})
	if got != "prefix:"+NewDefaultKeyer().FontKey("h", FontKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}
