package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrUnavailable is returned when a remote backend cannot be reached
	// (connection refused, timeouts, pool exhaustion).
	ErrUnavailable = errors.New("cache backend unavailable")

	// ErrCorrupt is returned when a stored entry cannot be decoded.
	ErrCorrupt = errors.New("corrupt cache entry")
)
