package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// This is useful when several deployments share one Redis database.
//
// Example usage:
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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

// ReferenceKey generates a prefixed key for reference table caching.
func (k *ScopedKeyer) ReferenceKey(source string) string {
	return k.prefix + k.inner.ReferenceKey(source)
}

// AtlasKey generates a prefixed key for atlas caching.
func (k *ScopedKeyer) AtlasKey(facesHash string, opts AtlasKeyOpts) string {
	return k.prefix + k.inner.AtlasKey(facesHash, opts)
}
