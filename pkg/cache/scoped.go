package cache

// ScopedKeyer wraps a Keyer with a prefix, giving each tenant or API key
// its own namespace:
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "client:abc123:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer falls
// back to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// SeriesKey generates a prefixed key for series caching.
func (k *ScopedKeyer) SeriesKey(source string, opts SeriesKeyOpts) string {
	return k.prefix + k.inner.SeriesKey(source, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(seriesHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(seriesHash, opts)
}
