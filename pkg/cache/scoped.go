package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share one
// backend, typically a Redis instance, without seeing each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "project:docs-site:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FontKey generates a prefixed key for font bundle caching.
func (k *ScopedKeyer) FontKey(sourcesHash string, opts FontKeyOpts) string {
	return k.prefix + k.inner.FontKey(sourcesHash, opts)
}
