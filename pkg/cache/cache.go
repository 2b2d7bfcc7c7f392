// Package cache provides the caching layer used by skin generation and the
// reference table loader.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//
// # Keys
//
// Keys are produced by a [Keyer] so that every component derives them the
// same way. [ScopedKeyer] prefixes every key, which lets several servers
// share one Redis database.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Time-to-live values for cached data.
const (
	// TTLReference applies to reference tables fetched over HTTP.
	TTLReference = 7 * 24 * time.Hour

	// TTLAtlas applies to composited atlases. Entries are keyed by the
	// content of their inputs, so they only expire to bound disk usage.
	TTLAtlas = 30 * 24 * time.Hour
)
