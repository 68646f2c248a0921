package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fetchkit/fetchkit"
)

// Redis is a cache store backed by a Redis server, for caches shared
// between processes. Keys are namespaced so one database can serve several
// clients.
type Redis struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedis wraps a go-redis client. namespace prefixes every stored key;
// it defaults to "fetchkit".
func NewRedis(client redis.UniversalClient, namespace string) *Redis {
	if namespace == "" {
		namespace = "fetchkit"
	}
	return &Redis{client: client, namespace: namespace}
}

func (r *Redis) redisKey(canonical string) string {
	return r.namespace + ":" + canonical
}

// Set stores value under key with the given TTL. A ttl of 0 stores the
// entry without expiry.
func (r *Redis) Set(ctx context.Context, key fetchkit.Key, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.redisKey(key.String()), value, ttl).Err()
}

// Get retrieves the cached value for key.
func (r *Redis) Get(ctx context.Context, key fetchkit.Key) ([]byte, error) {
	data, err := r.client.Get(ctx, r.redisKey(key.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

// Invalidate implements fetchkit.Store. Prefix targets SCAN the namespace
// with a glob anchored at the prefix and delete boundary-exact matches in
// batches.
func (r *Redis) Invalidate(ctx context.Context, target fetchkit.Target) error {
	ks := target.Key.String()
	if target.Exact {
		return r.client.Del(ctx, r.redisKey(ks)).Err()
	}

	// MATCH narrows the scan; the boundary check below is what decides.
	pattern := escapeGlob(r.redisKey(ks[:len(ks)-1])) + "*"
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 256).Result()
		if err != nil {
			return err
		}
		var stale []string
		for _, k := range keys {
			canonical := strings.TrimPrefix(k, r.namespace+":")
			if fetchkit.MatchesPrefix(canonical, ks) {
				stale = append(stale, k)
			}
		}
		if len(stale) > 0 {
			if err := r.client.Del(ctx, stale...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// escapeGlob escapes redis glob metacharacters; canonical keys contain
// '[' and ']' which MATCH would otherwise treat as character classes.
func escapeGlob(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

var _ fetchkit.Store = (*Redis)(nil)
