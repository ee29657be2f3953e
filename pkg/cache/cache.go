// Package cache stores fetched series, HTTP responses and rendered posters.
//
// # Backends
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (API server)
//   - [NullCache]: stores nothing (--no-cache)
//
// All backends implement [Cache]. Keys are built by a [Keyer] so that the
// same inputs always map to the same entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.SeriesKey("notion", cache.SeriesKeyOpts{Ref: dbID, Years: "2023"})
//	data, ok, err := c.Get(ctx, key)
//
// [GetOrLoad] collapses concurrent misses for one key into a single load.
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind.
const (
	// TTLHTTP applies to raw API responses.
	TTLHTTP = time.Hour

	// TTLSeries applies to loaded day series.
	TTLSeries = 6 * time.Hour

	// TTLArtifact applies to rendered posters, which are pure functions of
	// their series hash and options.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A zero TTL in Set means the entry never expires.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
