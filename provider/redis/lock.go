package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/kvbag/provider"
)

// Locker is a distributed provider.Locker built on SET NX PX.
// Unlike lock.Table it does not queue waiters: contenders poll, so wake order
// is not FIFO. Each lock carries a lease so a crashed holder cannot wedge a
// key forever, and release only deletes a lock this process still owns.
type Locker struct {
	rdb     goredis.UniversalClient
	prefix  string
	lease   time.Duration
	timeout time.Duration
	retry   time.Duration

	mu     sync.Mutex
	tokens map[string]string // key -> token held by this process
}

var _ pr.Locker = (*Locker)(nil)

type LockerConfig struct {
	Client  goredis.UniversalClient
	Prefix  string        // "" => "kvbag:lock:"
	Lease   time.Duration // lock auto-expiry; 0 => 10s
	Timeout time.Duration // max wait in Lock; 0 => 3s
	Retry   time.Duration // poll interval; 0 => 10ms
}

func NewLocker(cfg LockerConfig) (*Locker, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	l := &Locker{
		rdb:     cfg.Client,
		prefix:  cfg.Prefix,
		lease:   cfg.Lease,
		timeout: cfg.Timeout,
		retry:   cfg.Retry,
		tokens:  make(map[string]string),
	}
	if l.prefix == "" {
		l.prefix = "kvbag:lock:"
	}
	if l.lease <= 0 {
		l.lease = 10 * time.Second
	}
	if l.timeout <= 0 {
		l.timeout = 3 * time.Second
	}
	if l.retry <= 0 {
		l.retry = 10 * time.Millisecond
	}
	return l, nil
}

var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *Locker) Lock(ctx context.Context, key string) bool {
	token := uuid.NewString()
	k := l.prefix + key

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	tick := time.NewTicker(l.retry)
	defer tick.Stop()
	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.lease).Result()
		if err == nil && ok {
			l.mu.Lock()
			l.tokens[key] = token
			l.mu.Unlock()
			return true
		}
		select {
		case <-ctx.Done():
			return false
		case <-tick.C:
		}
	}
}

func (l *Locker) Unlock(key string) {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return
	}
	// best effort; an expired lease has already released the key
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	_ = releaseScript.Run(ctx, l.rdb, []string{l.prefix + key}, token).Err()
}
