// Package cache stores parsed outlines, layouts and rendered artifacts
// between runs.
//
// Three backends share the [Cache] interface:
//
//   - [NullCache] never stores anything (caching disabled)
//   - [FileCache] keeps entries as JSON files, used by the CLI
//   - [RedisCache] shares entries between server replicas
//
// Keys come from a [Keyer], which hashes every input that affects the
// cached value so that changing a parse or layout option never returns a
// stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
//
// Get reports a miss with (nil, false, nil); an error means the backend
// itself failed. A zero ttl in Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per entry kind.
const (
	// GraphTTL covers parsed outlines. The key includes the document hash,
	// so entries only go stale through disuse.
	GraphTTL = 7 * 24 * time.Hour

	LayoutTTL   = 30 * 24 * time.Hour
	ArtifactTTL = 30 * 24 * time.Hour
)
