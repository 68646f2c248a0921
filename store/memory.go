package store

import (
	"context"
	"sync"
	"time"

	"github.com/fetchkit/fetchkit"
)

// Memory is an in-memory cache store. It is safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

func (e *memoryEntry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*memoryEntry)}
}

// Set stores value under key. A ttl of 0 keeps the entry until it is
// invalidated.
func (m *Memory) Set(_ context.Context, key fetchkit.Key, value []byte, ttl time.Duration) error {
	entry := &memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key.String()] = entry
	m.mu.Unlock()
	return nil
}

// Get retrieves the cached value for key. Expired entries are cleaned up
// lazily and reported as ErrNotFound.
func (m *Memory) Get(_ context.Context, key fetchkit.Key) ([]byte, error) {
	ks := key.String()
	m.mu.RLock()
	entry, ok := m.entries[ks]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if entry.expired() {
		m.mu.Lock()
		delete(m.entries, ks)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return entry.value, nil
}

// Invalidate implements fetchkit.Store. Exact targets remove one entry;
// prefix targets remove every entry whose key falls under the target key.
// Idempotent - invalidating an absent key is not an error.
func (m *Memory) Invalidate(_ context.Context, target fetchkit.Target) error {
	ks := target.Key.String()
	m.mu.Lock()
	defer m.mu.Unlock()
	if target.Exact {
		delete(m.entries, ks)
		return nil
	}
	for key := range m.entries {
		if fetchkit.MatchesPrefix(key, ks) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Len reports the number of live entries, counting expired ones that have
// not been swept yet.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

var _ fetchkit.Store = (*Memory)(nil)
