package memory

import (
	"context"
	"sync"

	"ideaboard/application/ports"
)

// Store is an in-process KeyValueStore. Nothing survives a restart.
type Store struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{items: make(map[string][]byte)}
}

// Get returns a copy of the stored value
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.items[key]
	if !ok {
		return nil, ports.ErrKeyNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set stores a copy of value
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.items[key] = stored
	return nil
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}
