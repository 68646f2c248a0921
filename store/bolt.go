package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fetchkit/fetchkit"
)

var defaultBucket = []byte("fetchkit")

// Bolt is a persistent cache store backed by a bbolt database. Entries
// survive process restarts; expiry is tracked per entry and enforced
// lazily on read.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

// BoltOptions configures OpenBolt.
type BoltOptions struct {
	// Bucket is the bbolt bucket name. Defaults to "fetchkit".
	Bucket string
}

// OpenBolt opens or initializes a Bolt store at path.
func OpenBolt(path string, opts BoltOptions) (*Bolt, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	bucket := defaultBucket
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
	return &Bolt{db: db, bucket: bucket}, nil
}

// Close closes the underlying database.
func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Set stores value under key with an absolute expiry of now+ttl. A ttl of
// 0 means the entry never expires.
//
// Layout: 8 bytes big endian unix expiry || raw value.
func (b *Bolt) Set(_ context.Context, key fetchkit.Key, value []byte, ttl time.Duration) error {
	var expiresAt int64
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).Unix()
	}
	buf := make([]byte, 8+len(value))
	binary.BigEndian.PutUint64(buf[:8], uint64(expiresAt))
	copy(buf[8:], value)

	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(b.bucket).Put([]byte(key.String()), buf)
	})
}

// Get retrieves the cached value for key if present and not expired.
func (b *Bolt) Get(_ context.Context, key fetchkit.Key) ([]byte, error) {
	var out []byte
	var found bool
	if err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(b.bucket).Get([]byte(key.String()))
		if v == nil || len(v) < 8 {
			return nil
		}
		expiresAt := int64(binary.BigEndian.Uint64(v[:8]))
		if expiresAt > 0 && time.Now().Unix() > expiresAt {
			return nil
		}
		found = true
		out = append([]byte(nil), v[8:]...)
		return nil
	}); err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return out, nil
}

// Invalidate implements fetchkit.Store. Prefix targets walk the key range
// with a cursor seeded at the prefix; the boundary check keeps
// ["users"] from sweeping ["users2",...].
func (b *Bolt) Invalidate(_ context.Context, target fetchkit.Target) error {
	ks := target.Key.String()
	return b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket(b.bucket)
		if target.Exact {
			return bk.Delete([]byte(ks))
		}

		// Canonical keys under a prefix all start with the prefix minus
		// its closing bracket.
		seek := []byte(ks[:len(ks)-1])
		c := bk.Cursor()
		var stale [][]byte
		for k, _ := c.Seek(seek); k != nil && bytes.HasPrefix(k, seek); k, _ = c.Next() {
			if fetchkit.MatchesPrefix(string(k), ks) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := bk.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ fetchkit.Store = (*Bolt)(nil)
