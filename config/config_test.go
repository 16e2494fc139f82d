package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.DefaultTTL)
	assert.Equal(t, "json", cfg.Codec)
	assert.Equal(t, "memory", cfg.Local.Engine)
	assert.Equal(t, "redis", cfg.Distributed.Engine)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, int64(200), cfg.Redis.ScanCount)
	assert.Equal(t, []string{"localhost:11211"}, cfg.Memcache.Servers)
	assert.False(t, cfg.Bus.Enabled)
	assert.Equal(t, "logrus", cfg.Log.Backend)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HYBRIDCACHE_NAMESPACE", "app:users")
	t.Setenv("HYBRIDCACHE_DEFAULT_TTL", "90s")
	t.Setenv("HYBRIDCACHE_COALESCE_LOADS", "true")
	t.Setenv("HYBRIDCACHE_LOCAL_ENGINE", "Ristretto")
	t.Setenv("HYBRIDCACHE_DISTRIBUTED_ENGINE", "memcache")
	t.Setenv("HYBRIDCACHE_MEMCACHE_SERVERS", "mc1:11211, mc2:11211,")
	t.Setenv("HYBRIDCACHE_BUS_ENABLED", "1")
	t.Setenv("HYBRIDCACHE_LOG_BACKEND", "zap")
	t.Setenv("HYBRIDCACHE_REDIS_DB", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "app:users", cfg.Namespace)
	assert.Equal(t, 90*time.Second, cfg.DefaultTTL)
	assert.True(t, cfg.CoalesceLoads)
	assert.Equal(t, "ristretto", cfg.Local.Engine)
	assert.Equal(t, "memcache", cfg.Distributed.Engine)
	assert.Equal(t, []string{"mc1:11211", "mc2:11211"}, cfg.Memcache.Servers)
	assert.True(t, cfg.Bus.Enabled)
	assert.Equal(t, "zap", cfg.Log.Backend)
	assert.Equal(t, 0, cfg.Redis.DB, "unparsable values fall back to the default")
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.env")
	require.NoError(t, os.WriteFile(path, []byte("HYBRIDCACHE_NAMESPACE=from-file\nHYBRIDCACHE_LOCAL_ENGINE=bigcache\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("HYBRIDCACHE_NAMESPACE")
		os.Unsetenv("HYBRIDCACHE_LOCAL_ENGINE")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Namespace)
	assert.Equal(t, "bigcache", cfg.Local.Engine)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(*Config)
		errs   []string
	}{
		{"unknown_local", func(c *Config) { c.Local.Engine = "lru" }, []string{`unknown local engine "lru"`}},
		{"unknown_distributed", func(c *Config) { c.Distributed.Engine = "etcd" }, []string{`unknown distributed engine "etcd"`}},
		{"bigcache_window", func(c *Config) { c.Local.Engine = "bigcache"; c.Local.LifeWindow = 0 }, []string{"LOCAL_LIFE_WINDOW"}},
		{"bigcache_ttl_below_window", func(c *Config) {
			c.Local.Engine = "bigcache"
			c.Local.LifeWindow = 10 * time.Minute
			c.DefaultTTL = time.Minute
		}, []string{"DEFAULT_TTL 1m0s is shorter than LOCAL_LIFE_WINDOW 10m0s"}},
		{"ristretto_sizes", func(c *Config) { c.Local.Engine = "ristretto"; c.Local.MaxCost = 0 }, []string{"ristretto"}},
		{"memcache_servers", func(c *Config) { c.Distributed.Engine = "memcache"; c.Memcache.Servers = nil }, []string{"MEMCACHE_SERVERS"}},
		{"bus_channel", func(c *Config) { c.Bus.Enabled = true; c.Bus.Channel = "" }, []string{"BUS_CHANNEL"}},
		{"unknown_codec", func(c *Config) { c.Codec = "yaml" }, []string{`unknown codec "yaml"`}},
		{"all_at_once", func(c *Config) { c.Log.Backend = "stdout"; c.DefaultTTL = -1 }, []string{"log backend", "DEFAULT_TTL"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			for _, want := range tc.errs {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestValidateBigcacheWindowCoversTTL(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	cfg.Local.Engine = "bigcache"
	cfg.Local.LifeWindow = 10 * time.Minute

	cfg.DefaultTTL = 10 * time.Minute
	assert.NoError(t, cfg.Validate())

	cfg.DefaultTTL = 0
	assert.NoError(t, cfg.Validate(), "no default TTL leaves expiry to the window")
}
