// Package memory is a typed in-process tier on patrickmn/go-cache. Values are
// stored as V without serialization, so it pairs well with a byte-store
// distributed tier and is the default local tier.
package memory

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/unkn0wn-root/hybridcache"
	"github.com/unkn0wn-root/hybridcache/internal/util"
)

type Config struct {
	Namespace       string        // keys stored as "<ns>:<key>"; lets several tiers share one cache
	CleanupInterval time.Duration // expired-item sweep; 0 => 1m, < 0 disables sweeping
}

// Tier stores V directly. Entries of another type found under a key (a shared
// go-cache used with different V) are treated as a miss and dropped.
type Tier[V any] struct {
	c     *gocache.Cache
	ns    string
	owned bool
}

var _ hybridcache.Tier[struct{}] = (*Tier[struct{}])(nil)

func New[V any](cfg Config) *Tier[V] {
	interval := cfg.CleanupInterval
	if interval == 0 {
		interval = time.Minute
	}
	return &Tier[V]{
		c:     gocache.New(gocache.NoExpiration, interval),
		ns:    cfg.Namespace,
		owned: true,
	}
}

// NewWithCache wraps an existing go-cache. Close leaves it untouched.
func NewWithCache[V any](c *gocache.Cache, namespace string) *Tier[V] {
	return &Tier[V]{c: c, ns: namespace}
}

func (t *Tier[V]) Get(_ context.Context, key string) (hybridcache.CacheValue[V], error) {
	k := util.StorageKey(t.ns, key)
	raw, ok := t.c.Get(k)
	if !ok {
		return hybridcache.Missing[V](), nil
	}
	if raw == nil {
		// a nil stored for an interface-typed V
		var zero V
		return hybridcache.Found(zero), nil
	}
	v, ok := raw.(V)
	if !ok {
		t.c.Delete(k)
		return hybridcache.Missing[V](), nil
	}
	return hybridcache.Found(v), nil
}

func (t *Tier[V]) GetOrLoad(ctx context.Context, key string, retriever hybridcache.Retriever[V], ttl time.Duration) (hybridcache.CacheValue[V], error) {
	cv, _ := t.Get(ctx, key)
	if cv.HasValue || retriever == nil {
		return cv, nil
	}
	v, err := retriever(ctx)
	if err != nil {
		return hybridcache.Missing[V](), err
	}
	_ = t.Set(ctx, key, v, ttl)
	return hybridcache.Found(v), nil
}

// Set never fails; ttl <= 0 means no expiry.
func (t *Tier[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	t.c.Set(util.StorageKey(t.ns, key), value, ttl)
	return nil
}

func (t *Tier[V]) Remove(_ context.Context, key string) error {
	t.c.Delete(util.StorageKey(t.ns, key))
	return nil
}

// RemoveByPrefix enumerates the unexpired items (go-cache has no prefix index).
func (t *Tier[V]) RemoveByPrefix(_ context.Context, prefix string) error {
	full := util.StorageKey(t.ns, prefix)
	for k := range t.c.Items() {
		if strings.HasPrefix(k, full) {
			t.c.Delete(k)
		}
	}
	return nil
}

// Len reports the number of stored items, expired ones included until swept.
func (t *Tier[V]) Len() int { return t.c.ItemCount() }

func (t *Tier[V]) Close(context.Context) error {
	if t.owned {
		t.c.Flush()
	}
	return nil
}
