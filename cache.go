package hybridcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/hybridcache/bus"
)

type hybrid[V any] struct {
	local       Tier[V]
	distributed Tier[V]
	log         Logger
	hooks       Hooks
	enabled     bool
	defaultTTL  time.Duration

	// nil unless Options.CoalesceLoads
	loads *singleflight.Group

	bus       bus.Bus
	busWg     sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

func newHybrid[V any](opts Options[V]) (*hybrid[V], error) {
	resolve := opts.Resolver
	if resolve == nil {
		resolve = opts.Tiers.Resolve
	}
	local := resolve(LocalKey)
	distributed := resolve(DistributedKey)
	if local == nil || distributed == nil {
		return nil, ErrTierRequired
	}

	h := &hybrid[V]{
		local:       local,
		distributed: distributed,
		enabled:     !opts.Disabled,
		bus:         opts.Bus,
	}

	// defaults
	h.log = coalesce[Logger](opts.Logger, NopLogger{})
	h.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	h.defaultTTL = coalesce[time.Duration](opts.DefaultTTL, defaultTTL)

	if opts.CoalesceLoads {
		h.loads = &singleflight.Group{}
	}

	if h.bus != nil {
		h.busWg.Add(1)
		go h.listen()
	}
	return h, nil
}

func (h *hybrid[V]) Enabled() bool { return h.enabled }

func (h *hybrid[V]) Close(ctx context.Context) error {
	h.closeOnce.Do(func() {
		var errs []error
		if h.bus != nil {
			// closing the bus closes Messages(), which ends listen
			if err := h.bus.Close(); err != nil {
				errs = append(errs, fmt.Errorf("bus: %w", err))
			}
			h.busWg.Wait()
		}
		if err := h.local.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("local tier: %w", err))
		}
		if err := h.distributed.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("distributed tier: %w", err))
		}
		h.closeErr = errors.Join(errs...)
	})
	return h.closeErr
}

func (h *hybrid[V]) Get(ctx context.Context, key string) (CacheValue[V], error) {
	return h.GetOrLoad(ctx, key, nil, 0)
}

func (h *hybrid[V]) GetOrLoad(ctx context.Context, key string, retriever Retriever[V], ttl time.Duration) (CacheValue[V], error) {
	if !h.enabled {
		if retriever == nil {
			return Missing[V](), nil
		}
		v, err := retriever(ctx)
		if err != nil {
			return Missing[V](), err
		}
		return Found(v), nil
	}

	cv, err := h.local.Get(ctx, key)
	if err != nil {
		return Missing[V](), err
	}
	if cv.HasValue {
		h.hooks.Hit(LocalKey, key)
		return cv, nil
	}

	cv, err = h.distributed.Get(ctx, key)
	if err != nil {
		return Missing[V](), err
	}
	if cv.HasValue {
		h.hooks.Hit(DistributedKey, key)
		h.backfill(ctx, key, cv.Value, h.ttl(ttl))
		return cv, nil
	}

	h.hooks.Miss(key)
	if retriever == nil {
		return Missing[V](), nil
	}
	if h.loads == nil {
		return h.load(ctx, key, retriever, h.ttl(ttl))
	}

	res, err, shared := h.loads.Do(key, func() (any, error) {
		return h.load(ctx, key, retriever, h.ttl(ttl))
	})
	if err != nil {
		return Missing[V](), err
	}
	if shared {
		h.log.Debug("load shared with concurrent miss", Fields{"key": key})
	}
	return res.(CacheValue[V]), nil
}

func (h *hybrid[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	if !h.enabled {
		return nil
	}
	err := h.write(ctx, "set", key, value, h.ttl(ttl))
	h.publish(ctx, bus.OpRemove, key)
	return err
}

func (h *hybrid[V]) Refresh(ctx context.Context, key string, value V, ttl time.Duration) error {
	if !h.enabled {
		return nil
	}
	err := h.write(ctx, "refresh", key, value, h.ttl(ttl))
	h.publish(ctx, bus.OpRemove, key)
	return err
}

func (h *hybrid[V]) Remove(ctx context.Context, key string) error {
	if !h.enabled {
		return nil
	}
	// shared tier first: a concurrent read can then no longer backfill what we drop locally
	derr := h.distributed.Remove(ctx, key)
	if derr != nil {
		h.writeFailed("remove", key, DistributedKey, derr)
	}
	lerr := h.local.Remove(ctx, key)
	if lerr != nil {
		h.writeFailed("remove", key, LocalKey, lerr)
	}
	h.publish(ctx, bus.OpRemove, key)
	return tierErr("remove", key, lerr, derr)
}

func (h *hybrid[V]) RemoveByPrefix(ctx context.Context, prefix string) error {
	if !h.enabled {
		return nil
	}
	derr := h.distributed.RemoveByPrefix(ctx, prefix)
	if derr != nil {
		h.writeFailed("remove_prefix", prefix, DistributedKey, derr)
	}
	lerr := h.local.RemoveByPrefix(ctx, prefix)
	if lerr != nil {
		h.writeFailed("remove_prefix", prefix, LocalKey, lerr)
	}
	h.publish(ctx, bus.OpRemovePrefix, prefix)
	return tierErr("remove_prefix", prefix, lerr, derr)
}

func (h *hybrid[V]) GetAsync(ctx context.Context, key string) *Future[CacheValue[V]] {
	return goFuture(func() (CacheValue[V], error) { return h.Get(ctx, key) })
}

func (h *hybrid[V]) GetOrLoadAsync(ctx context.Context, key string, retriever Retriever[V], ttl time.Duration) *Future[CacheValue[V]] {
	return goFuture(func() (CacheValue[V], error) { return h.GetOrLoad(ctx, key, retriever, ttl) })
}

func (h *hybrid[V]) SetAsync(ctx context.Context, key string, value V, ttl time.Duration) *Future[struct{}] {
	return goFutureErr(func() error { return h.Set(ctx, key, value, ttl) })
}

func (h *hybrid[V]) RefreshAsync(ctx context.Context, key string, value V, ttl time.Duration) *Future[struct{}] {
	return goFutureErr(func() error { return h.Refresh(ctx, key, value, ttl) })
}

func (h *hybrid[V]) RemoveAsync(ctx context.Context, key string) *Future[struct{}] {
	return goFutureErr(func() error { return h.Remove(ctx, key) })
}

func (h *hybrid[V]) RemoveByPrefixAsync(ctx context.Context, prefix string) *Future[struct{}] {
	return goFutureErr(func() error { return h.RemoveByPrefix(ctx, prefix) })
}

// load runs the retriever once and populates both tiers. A failed retriever writes nothing.
func (h *hybrid[V]) load(ctx context.Context, key string, retriever Retriever[V], ttl time.Duration) (CacheValue[V], error) {
	start := time.Now()
	v, err := retriever(ctx)
	h.hooks.Loaded(key, time.Since(start), err)
	if err != nil {
		return Missing[V](), err
	}
	if err := h.write(ctx, "load", key, v, ttl); err != nil {
		return Missing[V](), err
	}
	return Found(v), nil
}

// write sets key in local, then distributed. Both are attempted.
func (h *hybrid[V]) write(ctx context.Context, op, key string, value V, ttl time.Duration) error {
	lerr := h.local.Set(ctx, key, value, ttl)
	if lerr != nil {
		h.writeFailed(op, key, LocalKey, lerr)
	}
	derr := h.distributed.Set(ctx, key, value, ttl)
	if derr != nil {
		h.writeFailed(op, key, DistributedKey, derr)
	}
	return tierErr(op, key, lerr, derr)
}

// backfill is best effort: the value was found, a failed local write must not hide it.
func (h *hybrid[V]) backfill(ctx context.Context, key string, value V, ttl time.Duration) {
	if err := h.local.Set(ctx, key, value, ttl); err != nil {
		h.log.Warn("local backfill failed", Fields{"key": key, "err": err})
		h.hooks.BackfillFailed(key, err)
	}
}

func (h *hybrid[V]) writeFailed(op, key string, tier TierKind, err error) {
	h.log.Warn("tier write failed", Fields{"op": op, "key": key, "tier": tier.String(), "err": err})
	h.hooks.WriteFailed(op, key, tier, err)
}

// publish tells other processes to drop their local copy. Best effort: the
// distributed tier already holds the truth and local entries expire by TTL.
func (h *hybrid[V]) publish(ctx context.Context, op bus.Op, key string) {
	if h.bus == nil {
		return
	}
	if err := h.bus.Publish(ctx, bus.Message{Op: op, Key: key}); err != nil {
		h.log.Warn("invalidation publish failed", Fields{"op": op.String(), "key": key, "err": err})
		h.hooks.BusError("publish", err)
	}
}

func (h *hybrid[V]) listen() {
	defer h.busWg.Done()
	for m := range h.bus.Messages() {
		ctx := context.Background()
		var err error
		switch m.Op {
		case bus.OpRemove:
			err = h.local.Remove(ctx, m.Key)
		case bus.OpRemovePrefix:
			err = h.local.RemoveByPrefix(ctx, m.Key)
		default:
			h.log.Debug("ignoring unknown bus op", Fields{"op": uint8(m.Op), "origin": m.Origin})
			continue
		}
		if err != nil {
			h.log.Warn("applying remote invalidation failed", Fields{"op": m.Op.String(), "key": m.Key, "err": err})
			h.hooks.BusError("apply", err)
		}
	}
}

func (h *hybrid[V]) ttl(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return h.defaultTTL
	}
	return ttl
}
