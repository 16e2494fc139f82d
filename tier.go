package hybridcache

import (
	"context"
	"time"
)

// Retriever computes a value on a full miss. Its error is returned to the caller unchanged.
type Retriever[V any] func(ctx context.Context) (V, error)

// Tier is a single cache tier. Implementations must be safe for concurrent use.
type Tier[V any] interface {
	// Get returns Missing on a miss; err is reserved for tier failures.
	Get(ctx context.Context, key string) (CacheValue[V], error)

	// GetOrLoad is the tier-local get-or-populate: on a miss it calls retriever
	// (when non-nil) and stores the result with ttl.
	GetOrLoad(ctx context.Context, key string, retriever Retriever[V], ttl time.Duration) (CacheValue[V], error)

	// Set stores value unconditionally.
	Set(ctx context.Context, key string, value V, ttl time.Duration) error

	// Remove deletes key. Absence is not an error.
	Remove(ctx context.Context, key string) error

	// RemoveByPrefix deletes every key starting with the literal prefix.
	RemoveByPrefix(ctx context.Context, prefix string) error

	Close(ctx context.Context) error
}

// TierKind selects one of the two tiers.
type TierKind uint8

const (
	LocalKey TierKind = iota
	DistributedKey
)

func (k TierKind) String() string {
	switch k {
	case LocalKey:
		return "local"
	case DistributedKey:
		return "distributed"
	default:
		return "unknown"
	}
}

// Resolver maps a tier kind to its tier. New calls it once per kind and keeps
// the returned instances for the lifetime of the cache.
type Resolver[V any] func(kind TierKind) Tier[V]

// Tiers is the static two-field form of a Resolver.
type Tiers[V any] struct {
	Local       Tier[V]
	Distributed Tier[V]
}

// Resolve satisfies Resolver.
func (t Tiers[V]) Resolve(kind TierKind) Tier[V] {
	switch kind {
	case LocalKey:
		return t.Local
	case DistributedKey:
		return t.Distributed
	default:
		return nil
	}
}
