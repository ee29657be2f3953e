package cache

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/heatposter/pkg/observability"
)

var group singleflight.Group

// GetOrLoad returns the cached value for key, or calls load, stores its
// result with ttl and returns it. Concurrent misses for the same key share
// one load. Write failures are ignored; the loaded value is still returned.
func GetOrLoad(ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	kind := keyType(key)
	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, kind)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, kind)

	v, err, _ := group.Do(key, func() (any, error) {
		data, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, data, ttl); err == nil {
			observability.Cache().OnCacheSet(ctx, kind, len(data))
		}
		return data, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

// keyType returns the entry kind of a key built by a Keyer, skipping any
// scope prefix.
func keyType(key string) string {
	for _, kind := range []string{"http", "series", "artifact"} {
		if strings.HasPrefix(key, kind+":") || strings.Contains(key, ":"+kind+":") {
			return kind
		}
	}
	return "other"
}
