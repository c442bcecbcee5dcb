package readstate

import (
	"context"
	"sync"
)

// MemoryStore keeps the acknowledged set in memory. Used by tests and
// as a fallback when the state directory is unavailable.
type MemoryStore struct {
	mu  sync.Mutex
	ids map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{ids: make(map[string]bool)}
}

// Acknowledged returns a copy of the acknowledged set.
func (s *MemoryStore) Acknowledged(_ context.Context) (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]bool, len(s.ids))
	for id := range s.ids {
		out[id] = true
	}
	return out, nil
}

// Add records the given ids as acknowledged.
func (s *MemoryStore) Add(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if id != "" {
			s.ids[id] = true
		}
	}
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
