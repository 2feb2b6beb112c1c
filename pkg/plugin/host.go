package plugin

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/matzehuels/iconfont/pkg/errors"
	"github.com/matzehuels/iconfont/pkg/fontgen"
)

// DirHost is a Host that writes emitted files below Root and records watch
// globs. It backs the esbuild adapter and the standalone CLI build.
type DirHost struct {
	// Root is the output directory. An empty Root discards emitted files
	// but still records them.
	Root string

	mu      sync.Mutex
	globs   []string
	emitted []string
}

// AddWatchFile records a watch glob.
func (h *DirHost) AddWatchFile(glob string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, g := range h.globs {
		if g == glob {
			return
		}
	}
	h.globs = append(h.globs, glob)
}

// EmitFile writes source to Root/fileName.
func (h *DirHost) EmitFile(fileName string, source []byte) error {
	name := filepath.ToSlash(filepath.Clean(filepath.FromSlash(fileName)))
	if filepath.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
		return errors.New(errors.ErrCodeInvalidPath, "emitted file %q escapes the output directory", fileName)
	}
	if h.Root != "" {
		dst := filepath.Join(h.Root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(dst, source, 0644); err != nil {
			return err
		}
	}
	h.mu.Lock()
	h.emitted = append(h.emitted, name)
	h.mu.Unlock()
	return nil
}

// Emitted returns the forward-slash names of every emitted file.
func (h *DirHost) Emitted() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.emitted...)
}

// WatchGlobs returns the recorded watch globs.
func (h *DirHost) WatchGlobs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.globs...)
}

// WatchInputs expands the recorded globs into the files that currently match
// and every directory below each glob's static base, so that added and
// removed icons are noticed too.
func (h *DirHost) WatchInputs() (files, dirs []string) {
	globs := h.WatchGlobs()
	files, _ = fontgen.Expand(globs)
	for i, f := range files {
		files[i] = absPath(f)
	}

	seen := make(map[string]bool)
	for _, g := range globs {
		base, _ := doublestar.SplitPattern(g)
		root := filepath.FromSlash(base)
		_ = filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if abs := absPath(p); !seen[abs] {
				seen[abs] = true
				dirs = append(dirs, abs)
			}
			return nil
		})
	}
	sort.Strings(dirs)
	return files, dirs
}

func absPath(p string) string {
	abs, err := filepath.Abs(filepath.FromSlash(p))
	if err != nil {
		return filepath.FromSlash(p)
	}
	return abs
}

var _ Host = (*DirHost)(nil)
