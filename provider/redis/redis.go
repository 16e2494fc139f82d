package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/hybridcache/internal/util"
	pr "github.com/unkn0wn-root/hybridcache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

const (
	defaultScanCount = 200
	unlinkBatch      = 500
)

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
	scanCount   int64
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool  // set true only if this provider exclusively owns the client
	ScanCount   int64 // SCAN COUNT hint for DelPrefix; 0 => 200
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	sc := cfg.ScanCount
	if sc <= 0 {
		sc = defaultScanCount
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient, scanCount: sc}, nil
}

func (p *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := p.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (p *Redis) Set(ctx context.Context, key string, value []byte, _ int64, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 0 // treat non-positive TTLs as "no expiry" per provider contract
	}
	if err := p.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Del(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

// DelPrefix walks SCAN MATCH <prefix>* and UNLINKs in batches. On a cluster
// client every master is scanned, since SCAN only covers the node it runs on.
func (p *Redis) DelPrefix(ctx context.Context, prefix string) error {
	if cc, ok := p.rdb.(*goredis.ClusterClient); ok {
		return cc.ForEachMaster(ctx, func(ctx context.Context, node *goredis.Client) error {
			return p.scanDel(ctx, node, prefix)
		})
	}
	return p.scanDel(ctx, p.rdb, prefix)
}

func (p *Redis) scanDel(ctx context.Context, c goredis.Cmdable, prefix string) error {
	match := util.GlobEscape(prefix) + "*"
	// deleting while the cursor walks can make the server skip keys, so the walk
	// completes before anything is unlinked
	var (
		cursor  uint64
		matched []string
	)
	for {
		keys, next, err := c.Scan(ctx, cursor, match, p.scanCount).Result()
		if err != nil {
			return err
		}
		for _, k := range keys {
			// literal re-check; a server with different glob escaping must not widen the match
			if strings.HasPrefix(k, prefix) {
				matched = append(matched, k)
			}
		}
		cursor = next
		if cursor == 0 { // done scanning all keys
			break
		}
	}
	for len(matched) > 0 {
		n := min(len(matched), unlinkBatch)
		if err := p.unlink(ctx, c, matched[:n]); err != nil {
			return err
		}
		matched = matched[n:]
	}
	return nil
}

// unlink deletes keys one by one on a cluster node (keys may hash to different
// slots) and in a single UNLINK otherwise.
func (p *Redis) unlink(ctx context.Context, c goredis.Cmdable, keys []string) error {
	if _, ok := p.rdb.(*goredis.ClusterClient); ok {
		_, err := c.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
			for _, k := range keys {
				pipe.Unlink(ctx, k)
			}
			return nil
		})
		return err
	}
	return c.Unlink(ctx, keys...).Err()
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
