package bigcache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/hybridcache/provider"
)

// Provider is a local byte store on BigCache. BigCache has one global
// LifeWindow; per-entry TTLs passed to Set are ignored, and the first TTL
// shorter than the window is reported through Config.OnTTLIgnored.
type Provider struct {
	c          *bc.BigCache
	lifeWindow time.Duration

	onTTLIgnored func(ttl, lifeWindow time.Duration)
	ttlNotice    sync.Once
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	Shards             int // power of two; 0 = BigCache default (1024)
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited

	// OnTTLIgnored is called once, on the first Set whose TTL is shorter than
	// LifeWindow. Such entries stay readable until the window expires.
	OnTTLIgnored func(ttl, lifeWindow time.Duration)
}

func New(cfg Config) (*Provider, error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcache: LifeWindow must be positive")
	}
	conf := bc.DefaultConfig(cfg.LifeWindow)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	conf.Verbose = false
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, lifeWindow: cfg.LifeWindow, onTTLIgnored: cfg.OnTTLIgnored}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl > 0 && ttl < p.lifeWindow && p.onTTLIgnored != nil {
		p.ttlNotice.Do(func() { p.onTTLIgnored(ttl, p.lifeWindow) })
	}
	return true, p.c.Set(key, value)
}

func (p *Provider) Del(_ context.Context, key string) error {
	if err := p.c.Delete(key); err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
		return err
	}
	return nil
}

// DelPrefix iterates every shard. Keys are collected first, deleting while the
// iterator holds a shard snapshot is safe but would skew the walk.
func (p *Provider) DelPrefix(ctx context.Context, prefix string) error {
	var doomed []string
	it := p.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			// entry vanished between SetNext and Value (evicted/overwritten)
			continue
		}
		if k := e.Key(); strings.HasPrefix(k, prefix) {
			doomed = append(doomed, k)
		}
	}
	for _, k := range doomed {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.Del(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

func (p *Provider) Len() int { return p.c.Len() }

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
