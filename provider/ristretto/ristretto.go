package ristretto

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/hybridcache/provider"
)

// Provider is a local byte store on Ristretto. Ristretto hashes keys and cannot
// enumerate them, so the provider keeps its own key index for DelPrefix.
// The index is pruned on eviction and on observed misses.
type Provider struct {
	c *rc.Cache

	mu   sync.Mutex
	keys map[string]struct{}
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost in Ristretto is provided by the caller (TierOptions.ComputeSetCost).
}

type entry struct {
	key string
	val []byte
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	p := &Provider{keys: make(map[string]struct{})}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
		OnEvict:     p.onEvict,
		OnReject:    p.onReject,
	})
	if err != nil {
		return nil, err
	}
	p.c = c
	return p, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		p.forget(key)
		return nil, false, nil
	}
	e, _ := v.(*entry)
	if e == nil || e.key != key {
		// self-heal: drop unexpected entry shape or a hash collision
		p.c.Del(key)
		p.forget(key)
		return nil, false, nil
	}
	return e.val, true, nil
}

// Set waits for Ristretto's write buffer so a Get right after Set observes the value.
// ok=false means the entry was dropped by the write buffer or rejected by the
// admission policy. The key is indexed before the write so onReject can undo it.
func (p *Provider) Set(_ context.Context, key string, value []byte, cost int64, ttl time.Duration) (bool, error) {
	if ttl < 0 {
		ttl = 0
	}
	p.mu.Lock()
	p.keys[key] = struct{}{}
	p.mu.Unlock()

	if !p.c.SetWithTTL(key, &entry{key: key, val: value}, cost, ttl) {
		p.forget(key)
		return false, nil
	}
	p.c.Wait()

	p.mu.Lock()
	_, ok := p.keys[key]
	p.mu.Unlock()
	return ok, nil
}

func (p *Provider) Del(_ context.Context, key string) error {
	p.c.Del(key)
	p.forget(key)
	return nil
}

func (p *Provider) DelPrefix(_ context.Context, prefix string) error {
	p.mu.Lock()
	var doomed []string
	for k := range p.keys {
		if strings.HasPrefix(k, prefix) {
			doomed = append(doomed, k)
			delete(p.keys, k)
		}
	}
	p.mu.Unlock()

	for _, k := range doomed {
		p.c.Del(k)
	}
	// Del is buffered too
	p.c.Wait()
	return nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Metrics exposes Ristretto's counters (nil unless Config.Metrics).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

func (p *Provider) onEvict(item *rc.Item) {
	if e, ok := item.Value.(*entry); ok {
		p.forget(e.key)
	}
}

// onReject runs on Ristretto's policy goroutine. The policy also reports a
// duplicate insert of a resident key as a rejection, so the store is checked first.
func (p *Provider) onReject(item *rc.Item) {
	e, ok := item.Value.(*entry)
	if !ok {
		return
	}
	if _, resident := p.c.Get(e.key); resident {
		return
	}
	p.forget(e.key)
}

func (p *Provider) forget(key string) {
	p.mu.Lock()
	delete(p.keys, key)
	p.mu.Unlock()
}
