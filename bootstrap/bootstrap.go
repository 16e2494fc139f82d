// Package bootstrap assembles a HybridCache from a config.Config: the local and
// distributed engines, their tiers, the logger backend and the invalidation bus.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/hybridcache"
	"github.com/unkn0wn-root/hybridcache/bus"
	"github.com/unkn0wn-root/hybridcache/codec"
	"github.com/unkn0wn-root/hybridcache/config"
	logruslog "github.com/unkn0wn-root/hybridcache/log/logrus"
	sloglog "github.com/unkn0wn-root/hybridcache/log/slog"
	zaplog "github.com/unkn0wn-root/hybridcache/log/zap"
	pr "github.com/unkn0wn-root/hybridcache/provider"
	"github.com/unkn0wn-root/hybridcache/provider/bigcache"
	"github.com/unkn0wn-root/hybridcache/provider/memcache"
	rp "github.com/unkn0wn-root/hybridcache/provider/redis"
	"github.com/unkn0wn-root/hybridcache/provider/ristretto"
	"github.com/unkn0wn-root/hybridcache/tier/memory"
)

// Option adjusts the Options built from the config before New is called
// (hooks, a custom resolver, ...).
type Option[V any] func(*hybridcache.Options[V])

// LogOutput is where the configured logger writes.
var LogOutput io.Writer = os.Stderr

// New builds a ready cache. The distributed tier serializes with c (nil selects
// cfg.Codec); the local tier does too unless the engine is "memory", which
// stores V directly. Everything created here is released by the cache's Close.
func New[V any](ctx context.Context, cfg *config.Config, c codec.Codec[V], opts ...Option[V]) (hybridcache.HybridCache[V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		var err error
		if c, err = codec.ByName[V](cfg.Codec); err != nil {
			return nil, err
		}
	}
	logger := NewLogger(cfg.Log, LogOutput)

	var rdb *goredis.Client
	if cfg.Distributed.Engine == "redis" || cfg.Bus.Enabled {
		rdb = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("bootstrap: redis: %w", err)
		}
	}

	local, err := localTier[V](cfg, c, logger)
	if err != nil {
		closeAll(rdb)
		return nil, err
	}
	distributed, err := distributedTier[V](cfg, c, logger, rdb)
	if err != nil {
		_ = local.Close(ctx)
		closeAll(rdb)
		return nil, err
	}

	o := hybridcache.Options[V]{
		Tiers:         hybridcache.Tiers[V]{Local: local, Distributed: distributed},
		Logger:        logger,
		DefaultTTL:    cfg.DefaultTTL,
		CoalesceLoads: cfg.CoalesceLoads,
		Disabled:      cfg.Disabled,
	}
	if cfg.Bus.Enabled {
		// without a redis tier nothing else closes the client
		b, err := bus.NewRedis(ctx, bus.RedisConfig{
			Client:      rdb,
			CloseClient: cfg.Distributed.Engine != "redis",
			Channel:     cfg.Bus.Channel,
			OnError: func(err error) {
				logger.Warn("dropping undecodable invalidation", hybridcache.Fields{"err": err})
			},
		})
		if err != nil {
			_ = local.Close(ctx)
			_ = distributed.Close(ctx)
			closeAll(rdb)
			return nil, fmt.Errorf("bootstrap: bus: %w", err)
		}
		o.Bus = b
	}
	for _, opt := range opts {
		opt(&o)
	}

	hc, err := hybridcache.New[V](o)
	if err != nil {
		if o.Bus != nil {
			_ = o.Bus.Close()
		}
		_ = local.Close(ctx)
		_ = distributed.Close(ctx)
		return nil, err
	}
	logger.Info("hybrid cache ready", hybridcache.Fields{
		"namespace":   cfg.Namespace,
		"local":       cfg.Local.Engine,
		"distributed": cfg.Distributed.Engine,
		"bus":         cfg.Bus.Enabled,
	})
	return hc, nil
}

// NewLogger maps a LogConfig to one of the log/ adapters. "none" disables logging.
func NewLogger(cfg config.LogConfig, w io.Writer) hybridcache.Logger {
	switch cfg.Backend {
	case "zap":
		return zaplog.New(w, cfg.Level, cfg.Format)
	case "slog":
		return sloglog.New(w, cfg.Level, cfg.Format)
	case "none":
		return hybridcache.NopLogger{}
	default:
		return logruslog.New(w, cfg.Level, cfg.Format)
	}
}

func localTier[V any](cfg *config.Config, c codec.Codec[V], logger hybridcache.Logger) (hybridcache.Tier[V], error) {
	var p pr.Provider
	switch cfg.Local.Engine {
	case "memory":
		return memory.New[V](memory.Config{
			Namespace:       cfg.Namespace,
			CleanupInterval: cfg.Local.CleanupInterval,
		}), nil
	case "ristretto":
		rs, err := ristretto.New(ristretto.Config{
			NumCounters: cfg.Local.NumCounters,
			MaxCost:     cfg.Local.MaxCost,
			BufferItems: cfg.Local.BufferItems,
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: ristretto: %w", err)
		}
		p = rs
	case "bigcache":
		bp, err := bigcache.New(bigcache.Config{
			LifeWindow:         cfg.Local.LifeWindow,
			Shards:             cfg.Local.Shards,
			HardMaxCacheSizeMB: cfg.Local.HardMaxMB,
			OnTTLIgnored:       func(ttl, window time.Duration) {
				logger.Debug("bigcache ignores per-entry ttl; entries live for the life window", hybridcache.Fields{
					"ttl":         ttl.String(),
					"life_window": window.String(),
				})
			},
		})
		if err != nil {
			return nil, fmt.Errorf("bootstrap: bigcache: %w", err)
		}
		p = bp
	default:
		return nil, fmt.Errorf("bootstrap: unknown local engine %q", cfg.Local.Engine)
	}
	return hybridcache.NewTier[V](hybridcache.TierOptions[V]{
		Provider:  p,
		Codec:     c,
		Namespace: cfg.Namespace,
		Logger:    logger,
		// admission by framed size, so MaxCost reads as bytes
		ComputeSetCost: func(_ string, raw []byte) int64 { return int64(len(raw)) },
	})
}

func distributedTier[V any](cfg *config.Config, c codec.Codec[V], logger hybridcache.Logger, rdb *goredis.Client) (hybridcache.Tier[V], error) {
	var p pr.Provider
	switch cfg.Distributed.Engine {
	case "redis":
		if rdb == nil {
			return nil, errors.New("bootstrap: redis client not initialised")
		}
		// the tier owns the client; Close shuts down the bus before the tiers
		redisProvider, err := rp.New(rp.Config{Client: rdb, CloseClient: true, ScanCount: cfg.Redis.ScanCount})
		if err != nil {
			return nil, err
		}
		p = redisProvider
	case "memcache":
		mp, err := memcache.New(memcache.Config{
			Servers:      cfg.Memcache.Servers,
			Timeout:      cfg.Memcache.Timeout,
			MaxIdleConns: cfg.Memcache.MaxIdleConns,
		})
		if err != nil {
			return nil, err
		}
		p = mp
	default:
		return nil, fmt.Errorf("bootstrap: unknown distributed engine %q", cfg.Distributed.Engine)
	}
	return hybridcache.NewTier[V](hybridcache.TierOptions[V]{
		Provider:  p,
		Codec:     c,
		Namespace: cfg.Namespace,
		Logger:    logger,
	})
}

func closeAll(rdb *goredis.Client) {
	if rdb != nil {
		_ = rdb.Close()
	}
}
