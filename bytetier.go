package hybridcache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/hybridcache/codec"
	"github.com/unkn0wn-root/hybridcache/internal/util"
	"github.com/unkn0wn-root/hybridcache/internal/wire"
	pr "github.com/unkn0wn-root/hybridcache/provider"
)

// SetCostFunc computes the admission cost of a framed value (Ristretto uses it; others ignore it).
type SetCostFunc func(storageKey string, raw []byte) int64

// TierOptions configure a byte-store backed tier.
type TierOptions[V any] struct {
	// Required
	Provider pr.Provider
	Codec    c.Codec[V]

	// Namespace scopes keys as "<ns>:<key>". Prefix removal is scoped the same way.
	Namespace      string
	Logger         Logger      // if nil, NopLogger is used
	ComputeSetCost SetCostFunc // default 1
}

type byteTier[V any] struct {
	ns       string
	provider pr.Provider
	codec    c.Codec[V]
	log      Logger
	cost     SetCostFunc
}

var _ Tier[struct{}] = (*byteTier[struct{}])(nil)

// NewTier adapts a byte Provider and a Codec into a Tier. Values are serialized
// here and nowhere else.
func NewTier[V any](opts TierOptions[V]) (Tier[V], error) {
	if opts.Provider == nil {
		return nil, ErrProviderRequired
	}
	if opts.Codec == nil {
		return nil, ErrCodecRequired
	}
	t := &byteTier[V]{
		ns:       opts.Namespace,
		provider: opts.Provider,
		codec:    opts.Codec,
		log:      coalesce[Logger](opts.Logger, NopLogger{}),
		cost:     opts.ComputeSetCost,
	}
	if t.cost == nil {
		t.cost = func(string, []byte) int64 { return 1 }
	}
	return t, nil
}

func (t *byteTier[V]) Get(ctx context.Context, key string) (CacheValue[V], error) {
	k := t.storageKey(key)
	raw, ok, err := t.provider.Get(ctx, k)
	if err != nil {
		return Missing[V](), err
	}
	if !ok {
		return Missing[V](), nil
	}
	payload, err := wire.DecodeValue(raw)
	if err != nil {
		// foreign or truncated bytes under our key: drop them and report a miss
		if delErr := t.provider.Del(ctx, k); delErr != nil {
			t.log.Warn("self-heal delete failed", Fields{"key": key, "err": delErr})
		} else {
			t.log.Debug("self-healed corrupt entry", Fields{"key": key})
		}
		return Missing[V](), nil
	}
	v, err := t.codec.Decode(payload)
	if err != nil {
		return Missing[V](), err
	}
	return Found(v), nil
}

func (t *byteTier[V]) GetOrLoad(ctx context.Context, key string, retriever Retriever[V], ttl time.Duration) (CacheValue[V], error) {
	cv, err := t.Get(ctx, key)
	if err != nil || cv.HasValue || retriever == nil {
		return cv, err
	}
	v, err := retriever(ctx)
	if err != nil {
		return Missing[V](), err
	}
	if err := t.Set(ctx, key, v, ttl); err != nil {
		return Missing[V](), err
	}
	return Found(v), nil
}

func (t *byteTier[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	payload, err := t.codec.Encode(value)
	if err != nil {
		return err
	}
	k := t.storageKey(key)
	framed := wire.EncodeValue(payload)
	ok, err := t.provider.Set(ctx, k, framed, t.cost(k, framed), ttl)
	if err != nil {
		return err
	}
	if !ok {
		t.log.Debug("Set rejected by provider (pressure)", Fields{"key": key})
	}
	return nil
}

func (t *byteTier[V]) Remove(ctx context.Context, key string) error {
	return t.provider.Del(ctx, t.storageKey(key))
}

func (t *byteTier[V]) RemoveByPrefix(ctx context.Context, prefix string) error {
	return t.provider.DelPrefix(ctx, util.StorageKey(t.ns, prefix))
}

func (t *byteTier[V]) Close(ctx context.Context) error {
	return t.provider.Close(ctx)
}

func (t *byteTier[V]) storageKey(key string) string {
	return util.StorageKey(t.ns, key)
}
