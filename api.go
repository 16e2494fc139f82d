package hybridcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/hybridcache/bus"
)

// HybridCache is the two-tier cache API. V is the caller's value type.
// Every operation has an ...Async twin that runs it on its own goroutine and
// returns a Future with the same result.
type HybridCache[V any] interface {
	Enabled() bool
	Close(context.Context) error

	// Get reads local, then distributed (backfilling local on a distributed hit).
	Get(ctx context.Context, key string) (CacheValue[V], error)
	// GetOrLoad is Get plus, on a miss in both tiers, a single retriever call whose
	// result is written to both tiers with ttl. A nil retriever makes it a plain Get.
	GetOrLoad(ctx context.Context, key string, retriever Retriever[V], ttl time.Duration) (CacheValue[V], error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	// Refresh overwrites key in both tiers; use it when the cached value is known stale.
	Refresh(ctx context.Context, key string, value V, ttl time.Duration) error
	Remove(ctx context.Context, key string) error
	// RemoveByPrefix removes every key that starts with the literal prefix from both tiers.
	RemoveByPrefix(ctx context.Context, prefix string) error

	GetAsync(ctx context.Context, key string) *Future[CacheValue[V]]
	GetOrLoadAsync(ctx context.Context, key string, retriever Retriever[V], ttl time.Duration) *Future[CacheValue[V]]
	SetAsync(ctx context.Context, key string, value V, ttl time.Duration) *Future[struct{}]
	RefreshAsync(ctx context.Context, key string, value V, ttl time.Duration) *Future[struct{}]
	RemoveAsync(ctx context.Context, key string) *Future[struct{}]
	RemoveByPrefixAsync(ctx context.Context, prefix string) *Future[struct{}]
}

// Options tune the hybrid cache.
// Only the tiers are required (Tiers or Resolver); others have sensible defaults.
type Options[V any] struct {
	// Required: Tiers, or a Resolver (takes precedence when set).
	Tiers    Tiers[V]
	Resolver Resolver[V]

	Logger        Logger        // if nil, NopLogger is used
	Hooks         Hooks         // if nil, NopHooks is used
	DefaultTTL    time.Duration // used for writes with ttl <= 0; 0 => 10m
	CoalesceLoads bool          // share one retriever call between concurrent misses of a key
	Bus           bus.Bus       // optional cross-process local invalidation; closed by Close
	Disabled      bool          // default false (enabled)
}

func New[V any](opts Options[V]) (HybridCache[V], error) {
	return newHybrid[V](opts)
}
