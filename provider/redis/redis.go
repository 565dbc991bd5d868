package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/kvbag/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis maps provider.Store onto GET / SET / SET NX / DEL / PTTL.
// TTLs are millisecond-precision.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.Store = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
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

func (p *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := p.rdb.Set(ctx, key, value, redisTTL(ttl)).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Add(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	return p.rdb.SetNX(ctx, key, value, redisTTL(ttl)).Result()
}

func (p *Redis) Delete(ctx context.Context, key string) error {
	return p.rdb.Del(ctx, key).Err()
}

func (p *Redis) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := p.rdb.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, err
	}
	// PTTL replies -2 (missing) and -1 (no expiry) unscaled
	switch d {
	case -2:
		return 0, false, nil
	case -1:
		return 0, true, nil
	}
	if d <= 0 {
		return 0, false, nil
	}
	return d, true, nil
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

// treat non-positive TTLs as "no expiry" per provider contract
func redisTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return 0
	}
	return ttl
}
