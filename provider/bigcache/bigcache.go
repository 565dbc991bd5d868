// Package bigcache adapts allegro/bigcache into a provider.Store.
//
// BigCache only knows a cache-wide LifeWindow. Per-entry TTLs are carried in
// an internal/wire frame around each value and enforced on read, so the
// effective lifetime of an entry is min(ttl, LifeWindow). Entries stored
// without a TTL still disappear after LifeWindow.
package bigcache

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/kvbag/internal/util"
	"github.com/unkn0wn-root/kvbag/internal/wire"
	pr "github.com/unkn0wn-root/kvbag/provider"
)

const defaultLifeWindow = 24 * time.Hour

type Provider struct {
	c       *bc.BigCache
	stripes *util.Stripes
	now     func() time.Time
}

var _ pr.Store = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration // 0 => 24h
	CleanWindow        time.Duration
	Shards             int // power of two; 0 => bigcache default (1024)
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = defaultLifeWindow
	}
	conf := bc.DefaultConfig(life)
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
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, stripes: util.NewStripes(256), now: time.Now}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	_, payload, ok, err := p.read(key)
	if err != nil || !ok {
		return nil, false, err
	}
	return append([]byte{}, payload...), true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	mu := p.stripes.For(key)
	mu.Lock()
	defer mu.Unlock()
	return p.write(key, value, ttl)
}

func (p *Provider) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	mu := p.stripes.For(key)
	mu.Lock()
	defer mu.Unlock()
	_, _, ok, err := p.read(key)
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	return p.write(key, value, ttl)
}

func (p *Provider) Delete(_ context.Context, key string) error {
	err := p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (p *Provider) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	exp, _, ok, err := p.read(key)
	if err != nil || !ok {
		return 0, false, err
	}
	return wire.Remaining(exp, p.now()), true, nil
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}

// read returns a live entry. Expired and corrupt frames read as misses and are
// left for BigCache's own LifeWindow eviction; deleting them here could race
// with a concurrent Set of the same key.
func (p *Provider) read(key string) (int64, []byte, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return 0, nil, false, nil
	}
	if err != nil {
		return 0, nil, false, err
	}
	exp, payload, err := wire.DecodeEntry(b)
	if err != nil || wire.Expired(exp, p.now()) {
		return 0, nil, false, nil
	}
	return exp, payload, true, nil
}

func (p *Provider) write(key string, value []byte, ttl time.Duration) (bool, error) {
	if err := p.c.Set(key, wire.EncodeEntry(wire.ExpiresAt(p.now(), ttl), value)); err != nil {
		return false, err
	}
	return true, nil
}
