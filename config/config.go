// Package config loads cache settings from the environment (and an optional
// .env file) for bootstrap.New.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "HYBRIDCACHE_"

type Config struct {
	Namespace     string
	Codec         string // json, msgpack, cbor or cbor-det; used when bootstrap.New gets no codec
	DefaultTTL    time.Duration
	CoalesceLoads bool
	Disabled      bool

	Local       LocalConfig
	Distributed DistributedConfig
	Redis       RedisConfig
	Memcache    MemcacheConfig
	Bus         BusConfig
	Log         LogConfig
}

type LocalConfig struct {
	Engine string // memory, ristretto or bigcache

	// memory
	CleanupInterval time.Duration

	// ristretto
	NumCounters int64
	MaxCost     int64
	BufferItems int64

	// bigcache; its LifeWindow bounds every local TTL
	LifeWindow time.Duration
	Shards     int
	HardMaxMB  int
}

type DistributedConfig struct {
	Engine string // redis or memcache
}

type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	ScanCount    int64
}

type MemcacheConfig struct {
	Servers      []string
	Timeout      time.Duration
	MaxIdleConns int
}

type BusConfig struct {
	Enabled bool
	Channel string
}

type LogConfig struct {
	Backend string // logrus, zap, slog or none
	Level   string
	Format  string // json or text
}

// Load reads the given .env files (default ".env", ignored when absent) and then
// HYBRIDCACHE_* environment variables. Values already in the environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg := &Config{
		Namespace:     getEnv("NAMESPACE", ""),
		Codec:         strings.ToLower(getEnv("CODEC", "json")),
		DefaultTTL:    getDurationEnv("DEFAULT_TTL", 10*time.Minute),
		CoalesceLoads: getBoolEnv("COALESCE_LOADS", false),
		Disabled:      getBoolEnv("DISABLED", false),
		Local: LocalConfig{
			Engine:          strings.ToLower(getEnv("LOCAL_ENGINE", "memory")),
			CleanupInterval: getDurationEnv("LOCAL_CLEANUP_INTERVAL", time.Minute),
			NumCounters:     getInt64Env("LOCAL_NUM_COUNTERS", 1e6),
			MaxCost:         getInt64Env("LOCAL_MAX_COST", 64<<20),
			BufferItems:     getInt64Env("LOCAL_BUFFER_ITEMS", 64),
			LifeWindow:      getDurationEnv("LOCAL_LIFE_WINDOW", 10*time.Minute),
			Shards:          getIntEnv("LOCAL_SHARDS", 1024),
			HardMaxMB:       getIntEnv("LOCAL_HARD_MAX_MB", 0),
		},
		Distributed: DistributedConfig{
			Engine: strings.ToLower(getEnv("DISTRIBUTED_ENGINE", "redis")),
		},
		Redis: RedisConfig{
			Addr:         getEnv("REDIS_ADDR", "localhost:6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getIntEnv("REDIS_DB", 0),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
			ScanCount:    getInt64Env("REDIS_SCAN_COUNT", 200),
		},
		Memcache: MemcacheConfig{
			Servers:      getListEnv("MEMCACHE_SERVERS", []string{"localhost:11211"}),
			Timeout:      getDurationEnv("MEMCACHE_TIMEOUT", 500*time.Millisecond),
			MaxIdleConns: getIntEnv("MEMCACHE_MAX_IDLE_CONNS", 2),
		},
		Bus: BusConfig{
			Enabled: getBoolEnv("BUS_ENABLED", false),
			Channel: getEnv("BUS_CHANNEL", "hybridcache:invalidate"),
		},
		Log: LogConfig{
			Backend: strings.ToLower(getEnv("LOG_BACKEND", "logrus")),
			Level:   getEnv("LOG_LEVEL", "info"),
			Format:  getEnv("LOG_FORMAT", "json"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Local.Engine {
	case "memory":
	case "ristretto":
		if c.Local.NumCounters <= 0 || c.Local.MaxCost <= 0 || c.Local.BufferItems <= 0 {
			errs = append(errs, errors.New("ristretto needs positive NUM_COUNTERS, MAX_COST and BUFFER_ITEMS"))
		}
	case "bigcache":
		if c.Local.LifeWindow <= 0 {
			errs = append(errs, errors.New("bigcache needs a positive LOCAL_LIFE_WINDOW"))
		} else if c.DefaultTTL > 0 && c.DefaultTTL < c.Local.LifeWindow {
			errs = append(errs, fmt.Errorf("bigcache ignores per-entry TTLs: DEFAULT_TTL %v is shorter than LOCAL_LIFE_WINDOW %v", c.DefaultTTL, c.Local.LifeWindow))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown local engine %q", c.Local.Engine))
	}

	switch c.Distributed.Engine {
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis engine needs REDIS_ADDR"))
		}
	case "memcache":
		if len(c.Memcache.Servers) == 0 {
			errs = append(errs, errors.New("memcache engine needs MEMCACHE_SERVERS"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown distributed engine %q", c.Distributed.Engine))
	}

	if c.Bus.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("bus needs REDIS_ADDR"))
		}
		if c.Bus.Channel == "" {
			errs = append(errs, errors.New("bus needs BUS_CHANNEL"))
		}
	}

	switch c.Codec {
	case "json", "msgpack", "cbor", "cbor-det":
	default:
		errs = append(errs, fmt.Errorf("unknown codec %q", c.Codec))
	}

	switch c.Log.Backend {
	case "logrus", "zap", "slog", "none":
	default:
		errs = append(errs, fmt.Errorf("unknown log backend %q", c.Log.Backend))
	}

	if c.DefaultTTL < 0 {
		errs = append(errs, errors.New("DEFAULT_TTL must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(envPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(envPrefix + key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(envPrefix + key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(envPrefix + key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated value, dropping blanks.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(envPrefix + key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
