// Package asynchook moves hook calls off the cache's hot path onto a bounded
// queue drained by a few workers. Events are dropped when the queue is full.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{LoadEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := hybridcache.New[User](hybridcache.Options[User]{
//	    Tiers: hybridcache.Tiers[User]{Local: local, Distributed: distributed},
//	    Hooks: hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/hybridcache"
)

type Hooks struct {
	inner   hybridcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

var _ hybridcache.Hooks = (*Hooks)(nil)

func New(inner hybridcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded on a full queue or after Close.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	if h.closed.Load() {
		h.dropped.Add(1)
		return
	}
	defer func() {
		// lost the race with Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) Hit(t hybridcache.TierKind, k string) { h.try(func() { h.inner.Hit(t, k) }) }
func (h *Hooks) Miss(k string)                        { h.try(func() { h.inner.Miss(k) }) }
func (h *Hooks) BackfillFailed(k string, err error)   { h.try(func() { h.inner.BackfillFailed(k, err) }) }
func (h *Hooks) BusError(op string, err error)        { h.try(func() { h.inner.BusError(op, err) }) }
func (h *Hooks) Loaded(k string, took time.Duration, err error) {
	h.try(func() { h.inner.Loaded(k, took, err) })
}
func (h *Hooks) WriteFailed(op, k string, t hybridcache.TierKind, err error) {
	h.try(func() { h.inner.WriteFailed(op, k, t, err) })
}
