package cache

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory store implementation. Entries live until the
// store is garbage collected; there is no TTL or eviction.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
	}
}

// Get retrieves a value from the store. found is false when the key is absent.
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	if err := ValidateKey(key); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// Set stores a value, replacing any existing entry under the same key.
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	if err := ValidateKey(key); err != nil {
		return err
	}

	// Copy so later caller mutations don't reach into the store.
	buf := make([]byte, len(value))
	copy(buf, value)

	s.mu.Lock()
	s.entries[key] = buf
	s.mu.Unlock()

	return nil
}

// Len returns the number of stored entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
