// Package ristretto adapts dgraph-io/ristretto into a provider.Store.
//
// Ristretto admits writes asynchronously and may drop them under contention.
// Set and Add wait for the write buffer to drain so a successful call is
// visible to the next Get; a write the admission policy rejected reports
// ok=false. Values must be treated as a cache: Ristretto can still evict them.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/kvbag/internal/util"
	pr "github.com/unkn0wn-root/kvbag/provider"
)

type Provider struct {
	c *rc.Cache
	// every mutation of a key goes through its stripe so Add stays atomic
	stripes *util.Stripes
	cost    func(key string, value []byte) int64
}

var _ pr.Store = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost computes an entry's cost. nil => len(value).
	Cost func(key string, value []byte) int64
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	cost := cfg.Cost
	if cost == nil {
		cost = func(_ string, v []byte) int64 { return int64(len(v)) }
	}
	return &Provider{c: c, stripes: util.NewStripes(256), cost: cost}, nil
}

func (p *Provider) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := p.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, ok := v.([]byte)
	if !ok {
		// drop unexpected entry shape
		p.c.Del(key)
		return nil, false, nil
	}
	return append([]byte{}, b...), true, nil
}

func (p *Provider) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	mu := p.stripes.For(key)
	mu.Lock()
	defer mu.Unlock()
	return p.write(key, value, ttl), nil
}

func (p *Provider) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	mu := p.stripes.For(key)
	mu.Lock()
	defer mu.Unlock()
	if _, ok := p.c.Get(key); ok {
		return false, nil
	}
	return p.write(key, value, ttl), nil
}

func (p *Provider) Delete(_ context.Context, key string) error {
	mu := p.stripes.For(key)
	mu.Lock()
	p.c.Del(key)
	mu.Unlock()
	return nil
}

// TTL reports 0 for entries stored without expiry.
func (p *Provider) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	ttl, ok := p.c.GetTTL(key)
	if !ok {
		return 0, false, nil
	}
	return ttl, true, nil
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of provider.Store).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }

func (p *Provider) write(key string, value []byte, ttl time.Duration) bool {
	if ttl < 0 {
		ttl = 0
	}
	v := append([]byte{}, value...)
	if !p.c.SetWithTTL(key, v, p.cost(key, v), ttl) {
		return false
	}
	p.c.Wait()
	_, ok := p.c.Get(key)
	return ok
}
