// Package config loads a backend selection from YAML and builds the matching
// provider.Store and provider.Locker.
//
//	backend: redis
//	keyspace: wiki
//	lock_timeout: 2s
//	redis:
//	  url: redis://localhost:6379/0
//	  distributed_lock: true
//
// Every field can be overridden from the environment (KVBAG_BACKEND,
// KVBAG_REDIS_URL, ...); see envBindings for the full list.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendMemory    = "memory"
	BackendRistretto = "ristretto"
	BackendBigCache  = "bigcache"
	BackendRedis     = "redis"
	BackendBolt      = "bolt"
)

var ErrUnknownBackend = errors.New("config: unknown backend")

type Config struct {
	Backend       string        `yaml:"backend"`
	Keyspace      string        `yaml:"keyspace"`
	LockTimeout   time.Duration `yaml:"lock_timeout"`
	LockShards    int           `yaml:"lock_shards"`
	MergeAttempts int           `yaml:"merge_attempts"`

	Ristretto Ristretto `yaml:"ristretto"`
	BigCache  BigCache  `yaml:"bigcache"`
	Redis     Redis     `yaml:"redis"`
	Bolt      Bolt      `yaml:"bolt"`
}

type Ristretto struct {
	NumCounters int64 `yaml:"num_counters"`
	MaxCost     int64 `yaml:"max_cost"`
	BufferItems int64 `yaml:"buffer_items"`
	Metrics     bool  `yaml:"metrics"`
}

type BigCache struct {
	LifeWindow         time.Duration `yaml:"life_window"`
	CleanWindow        time.Duration `yaml:"clean_window"`
	Shards             int           `yaml:"shards"`
	MaxEntriesInWindow int           `yaml:"max_entries_in_window"`
	MaxEntrySize       int           `yaml:"max_entry_size"`
	HardMaxCacheSizeMB int           `yaml:"hard_max_cache_size_mb"`
}

type Redis struct {
	URL string `yaml:"url"`
	// DistributedLock swaps the in-process lock table for SET NX leases in
	// Redis so replicas serialize CAS and Incr on the same key.
	DistributedLock bool          `yaml:"distributed_lock"`
	LockPrefix      string        `yaml:"lock_prefix"`
	LockLease       time.Duration `yaml:"lock_lease"`
	LockRetry       time.Duration `yaml:"lock_retry"`
}

type Bolt struct {
	Path        string        `yaml:"path"`
	Bucket      string        `yaml:"bucket"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// Default is an in-process memory backend.
func Default() Config {
	return Config{
		Backend: BackendMemory,
		Ristretto: Ristretto{
			NumCounters: 1e6,
			MaxCost:     64 << 20,
			BufferItems: 64,
		},
	}
}

// Load reads path, then applies environment overrides.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML over Default and applies environment overrides.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendRistretto, BackendBigCache:
	case BackendRedis:
		if c.Redis.URL == "" {
			return errors.New("config: redis.url is required")
		}
	case BackendBolt:
		if c.Bolt.Path == "" {
			return errors.New("config: bolt.path is required")
		}
	default:
		return fmt.Errorf("%w %q", ErrUnknownBackend, c.Backend)
	}
	if c.MergeAttempts < 0 {
		return errors.New("config: merge_attempts must be >= 0")
	}
	return nil
}

type binding struct {
	env string
	set func(c *Config, v string) error
}

var envBindings = []binding{
	{"KVBAG_BACKEND", func(c *Config, v string) error { c.Backend = v; return nil }},
	{"KVBAG_KEYSPACE", func(c *Config, v string) error { c.Keyspace = v; return nil }},
	{"KVBAG_LOCK_TIMEOUT", func(c *Config, v string) error { return setDuration(&c.LockTimeout, v) }},
	{"KVBAG_LOCK_SHARDS", func(c *Config, v string) error { return setInt(&c.LockShards, v) }},
	{"KVBAG_MERGE_ATTEMPTS", func(c *Config, v string) error { return setInt(&c.MergeAttempts, v) }},
	{"KVBAG_RISTRETTO_MAX_COST", func(c *Config, v string) error { return setInt64(&c.Ristretto.MaxCost, v) }},
	{"KVBAG_BIGCACHE_LIFE_WINDOW", func(c *Config, v string) error { return setDuration(&c.BigCache.LifeWindow, v) }},
	{"KVBAG_BIGCACHE_HARD_MAX_MB", func(c *Config, v string) error { return setInt(&c.BigCache.HardMaxCacheSizeMB, v) }},
	{"KVBAG_REDIS_URL", func(c *Config, v string) error { c.Redis.URL = v; return nil }},
	{"KVBAG_REDIS_DISTRIBUTED_LOCK", func(c *Config, v string) error { return setBool(&c.Redis.DistributedLock, v) }},
	{"KVBAG_BOLT_PATH", func(c *Config, v string) error { c.Bolt.Path = v; return nil }},
	{"KVBAG_BOLT_BUCKET", func(c *Config, v string) error { c.Bolt.Bucket = v; return nil }},
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for _, b := range envBindings {
		v, ok := lookup(b.env)
		if !ok {
			continue
		}
		if err := b.set(c, v); err != nil {
			return fmt.Errorf("config: %s: %w", b.env, err)
		}
	}
	return nil
}

func setDuration(dst *time.Duration, v string) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, v string) error {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
