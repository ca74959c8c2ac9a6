package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several services or
// tenants can share one Redis or MongoDB backend without colliding.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "ndorder:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// OrderingKey generates a prefixed ordering key.
func (k *ScopedKeyer) OrderingKey(patternHash string, opts OrderingKeyOpts) string {
	return k.prefix + k.inner.OrderingKey(patternHash, opts)
}

// FillKey generates a prefixed fill statistics key.
func (k *ScopedKeyer) FillKey(patternHash, permHash string) string {
	return k.prefix + k.inner.FillKey(patternHash, permHash)
}
