// Package store provides reference implementations of the fetchkit cache
// store: an in-memory map for tests and single-process apps, a bbolt-backed
// store for persistence across restarts, and a Redis-backed store for
// shared caches. All three index entries by the canonical key string and
// implement boundary-exact prefix invalidation.
package store

import (
	"errors"
)

// ErrNotFound is returned by Get when no live entry exists for a key.
var ErrNotFound = errors.New("store: not found")
