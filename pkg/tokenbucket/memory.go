package tokenbucket

import (
	"context"
	"sync"
)

type memoryEntry struct {
	state     State
	expiresAt int64 // milliseconds since epoch
}

// MemoryStore is an in-process Store backed by a Go map.
//
// It is safe for concurrent use by multiple goroutines, but its state is local
// to the process and is not shared across replicas. Use RedisStore when you
// need a single global budget across multiple instances; MemoryStore is a
// dependency-free stand-in for unit tests, local development, and
// single-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string]memoryEntry
}

// NewMemoryStore constructs a MemoryStore with empty state.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		buckets: make(map[string]memoryEntry),
	}
}

// Transition applies the same transition as the Redis script, under a mutex
// instead of Redis's per-key serialization. Expiry is emulated: an entry past
// its deadline is treated as absent, exactly as Redis would have evicted it.
func (m *MemoryStore) Transition(_ context.Context, id string, capacity, cost, refillRate float64, nowMS int64) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var st *State
	if entry, ok := m.buckets[id]; ok && nowMS < entry.expiresAt {
		st = &entry.state
	}

	newState, res, ttlSeconds := transition(st, capacity, cost, refillRate, nowMS)
	if ttlSeconds > 0 {
		m.buckets[id] = memoryEntry{
			state:     newState,
			expiresAt: nowMS + ttlSeconds*1000,
		}
	} else {
		// Full bucket: an absent record encodes the same state.
		delete(m.buckets, id)
	}

	return res, nil
}
