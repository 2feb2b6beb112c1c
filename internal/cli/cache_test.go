package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/iconfont/pkg/cache"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, ".cache", "iconfont"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(xdg, "iconfont"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name     string
		cli      *CLI
		cfg      cacheConfig
		wantFile bool
	}{
		{"file", New(os.Stderr, LogInfo), cacheConfig{Dir: dir}, true},
		{"disabled", New(os.Stderr, LogInfo), cacheConfig{Dir: dir, Disabled: true}, false},
		{"no-cache flag", &CLI{Logger: newLogger(os.Stderr, LogInfo), noCache: true}, cacheConfig{Dir: dir}, false},
		{"redis unavailable falls back", New(os.Stderr, LogInfo), cacheConfig{Dir: dir, Redis: "redis://127.0.0.1:1/0"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.cli.newCache(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("newCache() error = %v", err)
			}
			defer c.Close()
			_, isFile := c.(*cache.FileCache)
			if isFile != tt.wantFile {
				t.Errorf("got %T, want file cache = %v", c, tt.wantFile)
			}
		})
	}
}

func TestNewCacheBadRedisURL(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	if _, err := c.newCache(context.Background(), cacheConfig{Redis: "not a url"}); err == nil {
		t.Error("expected an error for a malformed redis url")
	}
}
