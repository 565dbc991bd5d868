// Package bolt is a persistent provider.Store on top of bbolt.
//
// Entries survive restarts. Expiry is stored in an internal/wire frame and
// enforced on read; expired entries are removed lazily by the next write that
// touches the key or by Purge. Add runs its existence check and write in one
// update transaction.
package bolt

import (
	"context"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/unkn0wn-root/kvbag/internal/wire"
	pr "github.com/unkn0wn-root/kvbag/provider"
)

type Store struct {
	db     *bolt.DB
	bucket []byte
	now    func() time.Time
}

var _ pr.Store = (*Store)(nil)

type Options struct {
	// Bucket is the name of the Bolt bucket to use. "" => "kvbag".
	Bucket string
	// OpenTimeout bounds waiting for the file lock. 0 => 1s.
	OpenTimeout time.Duration
}

// Open initializes or opens a Store at the given path.
func Open(path string, opts Options) (*Store, error) {
	timeout := opts.OpenTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, err
	}
	bucket := []byte("kvbag")
	if opts.Bucket != "" {
		bucket = []byte(opts.Bucket)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, bucket: bucket, now: time.Now}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		_, payload, ok := s.live(tx.Bucket(s.bucket), key)
		if ok {
			// bolt memory is only valid inside the tx
			out = append([]byte{}, payload...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return s.put(tx.Bucket(s.bucket), key, value, ttl)
	})
	return err == nil, err
}

var errExists = errors.New("exists")

func (s *Store) Add(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if _, _, ok := s.live(b, key); ok {
			return errExists
		}
		return s.put(b, key, value, ttl)
	})
	if errors.Is(err, errExists) {
		return false, nil
	}
	return err == nil, err
}

func (s *Store) Delete(_ context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key))
	})
}

func (s *Store) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	var ttl time.Duration
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		exp, _, ok := s.live(tx.Bucket(s.bucket), key)
		if ok {
			ttl, found = wire.Remaining(exp, s.now()), true
		}
		return nil
	})
	if err != nil {
		return 0, false, err
	}
	return ttl, found, nil
}

// Purge deletes expired and corrupt entries and reports how many it removed.
func (s *Store) Purge(_ context.Context) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		c := b.Cursor()
		now := s.now()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			exp, _, err := wire.DecodeEntry(v)
			if err == nil && !wire.Expired(exp, now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// Close closes the underlying database.
func (s *Store) Close(_ context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) live(b *bolt.Bucket, key string) (int64, []byte, bool) {
	v := b.Get([]byte(key))
	if v == nil {
		return 0, nil, false
	}
	exp, payload, err := wire.DecodeEntry(v)
	if err != nil || wire.Expired(exp, s.now()) {
		return 0, nil, false
	}
	return exp, payload, true
}

func (s *Store) put(b *bolt.Bucket, key string, value []byte, ttl time.Duration) error {
	return b.Put([]byte(key), wire.EncodeEntry(wire.ExpiresAt(s.now(), ttl), value))
}
