// Package cache stores generated font bundles between builds.
//
// A font build is deterministic in its inputs, so the encoded payloads can be
// reused whenever the SVG sources and generator parameters are unchanged.
// This matters most in serve mode, where every restart of the dev server
// would otherwise regenerate all five containers.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for teams and CI runners
//   - [NullCache]: never stores anything (caching disabled)
//
// # Keys
//
// Keys are produced by a [Keyer] so that callers never build key strings by
// hand. [ScopedKeyer] adds a namespace prefix, for example one per project.
package cache

import (
	"context"
	"time"
)

// TTLFont is how long a generated font bundle stays cached.
const TTLFont = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored value. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// FontKeyOpts are the generator parameters that change the output bytes.
type FontKeyOpts struct {
	FontName       string   `json:"font_name"`
	Formats        []string `json:"formats"`
	StartCodepoint rune     `json:"start_codepoint"`
	FixedWidth     int      `json:"fixed_width"`
	Descent        int      `json:"descent"`
	FontHeight     int      `json:"font_height"`
	Sort           bool     `json:"sort"`
	Center         bool     `json:"center"`
	Normalize      bool     `json:"normalize"`
}

// Keyer builds cache keys.
type Keyer interface {
	// FontKey returns the key of a font bundle built from sources whose
	// combined digest is sourcesHash.
	FontKey(sourcesHash string, opts FontKeyOpts) string
}

// DefaultKeyer is the standard Keyer.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FontKey implements Keyer.
func (DefaultKeyer) FontKey(sourcesHash string, opts FontKeyOpts) string {
	return hashKey("font", sourcesHash, opts)
}

var _ Keyer = DefaultKeyer{}
