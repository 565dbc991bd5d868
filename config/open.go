package config

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/kvbag/lock"
	pr "github.com/unkn0wn-root/kvbag/provider"
	"github.com/unkn0wn-root/kvbag/provider/bigcache"
	"github.com/unkn0wn-root/kvbag/provider/bolt"
	"github.com/unkn0wn-root/kvbag/provider/memory"
	"github.com/unkn0wn-root/kvbag/provider/redis"
	"github.com/unkn0wn-root/kvbag/provider/ristretto"
)

// Open builds the store and locker cfg describes. The store owns any client
// it created; closing the store releases it.
func Open(ctx context.Context, cfg Config) (pr.Store, pr.Locker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	local := func() pr.Locker {
		return lock.New(lock.Options{Shards: cfg.LockShards, Timeout: cfg.LockTimeout})
	}

	switch cfg.Backend {
	case BackendMemory:
		return memory.New(), local(), nil

	case BackendRistretto:
		s, err := ristretto.New(ristretto.Config{
			NumCounters: cfg.Ristretto.NumCounters,
			MaxCost:     cfg.Ristretto.MaxCost,
			BufferItems: cfg.Ristretto.BufferItems,
			Metrics:     cfg.Ristretto.Metrics,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, local(), nil

	case BackendBigCache:
		s, err := bigcache.New(bigcache.Config{
			LifeWindow:         cfg.BigCache.LifeWindow,
			CleanWindow:        cfg.BigCache.CleanWindow,
			Shards:             cfg.BigCache.Shards,
			MaxEntriesInWindow: cfg.BigCache.MaxEntriesInWindow,
			MaxEntrySize:       cfg.BigCache.MaxEntrySize,
			HardMaxCacheSizeMB: cfg.BigCache.HardMaxCacheSizeMB,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, local(), nil

	case BackendBolt:
		s, err := bolt.Open(cfg.Bolt.Path, bolt.Options{
			Bucket:      cfg.Bolt.Bucket,
			OpenTimeout: cfg.Bolt.OpenTimeout,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, local(), nil

	case BackendRedis:
		return openRedis(ctx, cfg, local)
	}
	return nil, nil, ErrUnknownBackend
}

func openRedis(ctx context.Context, cfg Config, local func() pr.Locker) (pr.Store, pr.Locker, error) {
	opts, err := goredis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, errors.Join(errors.New("config: redis unreachable"), err)
	}

	s, err := redis.New(redis.Config{Client: client, CloseClient: true})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	if !cfg.Redis.DistributedLock {
		return s, local(), nil
	}
	l, err := redis.NewLocker(redis.LockerConfig{
		Client:  client,
		Prefix:  cfg.Redis.LockPrefix,
		Lease:   cfg.Redis.LockLease,
		Timeout: cfg.LockTimeout,
		Retry:   cfg.Redis.LockRetry,
	})
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return s, l, nil
}
