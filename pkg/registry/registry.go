// Package registry holds the per-plugin mapping from font format to the
// generated asset (URL, mime type and payload).
//
// The registry is written by the transform hook and read concurrently by the
// dev-server handlers, so every access goes through a read/write lock. A
// transform publishes all formats at once with Replace; readers never see a
// half-written set.
package registry

import (
	"sync"

	"github.com/matzehuels/iconfont/pkg/options"
)

// Asset is one generated font file.
type Asset struct {
	// URL is the absolute URL path the asset is referenced by, always
	// starting with "/assets/".
	URL string

	// Mime is the asset's mime type from the fixed table.
	Mime string

	// Payload is the file content.
	Payload []byte
}

// Registry maps formats to assets. The zero value is ready to use.
type Registry struct {
	mu     sync.RWMutex
	assets map[options.Format]Asset
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Get returns the asset registered for f.
func (r *Registry) Get(f options.Format) (Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.assets[f]
	return a, ok
}

// Set registers a single asset, replacing any previous one for f.
func (r *Registry) Set(f options.Format, a Asset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.assets == nil {
		r.assets = make(map[options.Format]Asset)
	}
	r.assets[f] = a
}

// Replace atomically swaps the whole registry content for assets.
// The map is copied; the caller keeps ownership of its argument.
func (r *Registry) Replace(assets map[options.Format]Asset) {
	next := make(map[options.Format]Asset, len(assets))
	for f, a := range assets {
		next[f] = a
	}
	r.mu.Lock()
	r.assets = next
	r.mu.Unlock()
}

// Has reports whether an asset is registered for f.
func (r *Registry) Has(f options.Format) bool {
	_, ok := r.Get(f)
	return ok
}

// Formats returns the registered formats in canonical order
// (woff2, woff, ttf, eot, svg).
func (r *Registry) Formats() []options.Format {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []options.Format
	for _, f := range options.DefaultFormats() {
		if _, ok := r.assets[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the number of registered assets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.assets)
}

// Reset removes every asset.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.assets = nil
	r.mu.Unlock()
}
