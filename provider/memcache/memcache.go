package memcache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/unkn0wn-root/hybridcache/internal/util"
	pr "github.com/unkn0wn-root/hybridcache/provider"
)

var ErrNilClient = errors.New("memcache provider: nil client")

// memcached treats expirations above 30 days as absolute unix timestamps.
const maxRelativeExpiry = 30 * 24 * time.Hour

// index size that triggers the first sweep of expired keys on Set
const minSweep = 1024

// Memcache is a distributed byte store on memcached.
//
// memcached cannot list keys, so DelPrefix only reaches keys written through
// this process (tracked in an in-memory index). Keys written by other
// processes expire by TTL; pair with a bus to fan prefix removals out.
// The index remembers each key's deadline (zero = no expiry) and drops
// expired keys when it is read or has grown past the next sweep mark.
type Memcache struct {
	mc  *memcache.Client
	now func() time.Time

	mu      sync.Mutex
	keys    map[string]time.Time
	sweepAt int
}

var _ pr.Provider = (*Memcache)(nil)

type Config struct {
	Client       *memcache.Client // takes precedence over Servers
	Servers      []string         // host:port list
	Timeout      time.Duration    // 0 => gomemcache default (500ms)
	MaxIdleConns int              // 0 => gomemcache default (2)
}

func New(cfg Config) (*Memcache, error) {
	mc := cfg.Client
	if mc == nil {
		if len(cfg.Servers) == 0 {
			return nil, ErrNilClient
		}
		mc = memcache.New(cfg.Servers...)
		if cfg.Timeout > 0 {
			mc.Timeout = cfg.Timeout
		}
		if cfg.MaxIdleConns > 0 {
			mc.MaxIdleConns = cfg.MaxIdleConns
		}
	}
	return &Memcache{
		mc:      mc,
		now:     time.Now,
		keys:    make(map[string]time.Time),
		sweepAt: minSweep,
	}, nil
}

func (p *Memcache) Get(_ context.Context, key string) ([]byte, bool, error) {
	it, err := p.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		p.forget(key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return it.Value, true, nil
}

func (p *Memcache) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	now := p.now()
	err := p.mc.Set(&memcache.Item{Key: key, Value: value, Expiration: expiration(ttl, now)})
	if err != nil {
		return false, err
	}
	var deadline time.Time
	if ttl > 0 {
		deadline = now.Add(ttl)
	}
	p.mu.Lock()
	p.keys[key] = deadline
	if len(p.keys) >= p.sweepAt {
		p.pruneLocked(now)
		p.sweepAt = max(2*len(p.keys), minSweep)
	}
	p.mu.Unlock()
	return true, nil
}

func (p *Memcache) Del(_ context.Context, key string) error {
	p.forget(key)
	if err := p.mc.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}

func (p *Memcache) DelPrefix(ctx context.Context, prefix string) error {
	for _, k := range p.indexed(prefix) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Del(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Close is a no-op: gomemcache keeps no resources beyond idle connections.
func (p *Memcache) Close(context.Context) error { return nil }

// indexed returns live indexed keys under prefix, pruning expired ones.
func (p *Memcache) indexed(prefix string) []string {
	p.mu.Lock()
	p.pruneLocked(p.now())
	all := make([]string, 0, len(p.keys))
	for k := range p.keys {
		all = append(all, k)
	}
	p.mu.Unlock()
	return util.MatchingKeys(all, prefix)
}

func (p *Memcache) pruneLocked(now time.Time) {
	for k, deadline := range p.keys {
		if !deadline.IsZero() && !now.Before(deadline) {
			delete(p.keys, k)
		}
	}
}

func (p *Memcache) forget(key string) {
	p.mu.Lock()
	delete(p.keys, key)
	p.mu.Unlock()
}

// expiration converts a TTL to memcached's int32 seconds: 0 = never,
// sub-second TTLs round up to 1s, long TTLs become absolute timestamps.
func expiration(ttl time.Duration, now time.Time) int32 {
	switch {
	case ttl <= 0:
		return 0
	case ttl > maxRelativeExpiry:
		return int32(now.Add(ttl).Unix())
	}
	secs := int32((ttl + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
