// Package sloghooks logs cache events with log/slog. Keys are redacted by default.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/hybridcache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all. Hits and misses are never logged.
	LoadEvery     uint64
	BackfillEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	hybridcache.NopHooks

	l    *slog.Logger
	opts Options

	loadCtr     atomic.Uint64
	backfillCtr atomic.Uint64
}

var _ hybridcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

// Loaded logs failed retrievers at warn and sampled successes at debug.
func (h *Hooks) Loaded(key string, took time.Duration, err error) {
	if h.l == nil {
		return
	}
	if err != nil {
		h.l.Warn("hybridcache.load_failed",
			"key", h.redact(key),
			"took", took,
			"err", err)
		return
	}
	if !sample(h.opts.LoadEvery, &h.loadCtr) {
		return
	}
	h.l.Debug("hybridcache.loaded",
		"key", h.redact(key),
		"took", took)
}

func (h *Hooks) BackfillFailed(key string, err error) {
	if h.l == nil || !sample(h.opts.BackfillEvery, &h.backfillCtr) {
		return
	}
	h.l.Warn("hybridcache.backfill_failed",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) WriteFailed(op, key string, tier hybridcache.TierKind, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("hybridcache.write_failed",
		"op", op,
		"tier", tier.String(),
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) BusError(op string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("hybridcache.bus_error",
		"op", op,
		"err", err)
}
