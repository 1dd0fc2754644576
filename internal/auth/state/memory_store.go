package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process attempt store for tests and redis-less
// local runs.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

type entry struct {
	verifier  string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Save(ctx context.Context, state, codeVerifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[state] = entry{
		verifier:  codeVerifier,
		expiresAt: s.now().Add(TTL),
	}
	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, state string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[state]
	if !ok {
		return "", ErrNotFound
	}
	delete(s.entries, state)

	if s.now().After(e.expiresAt) {
		return "", ErrNotFound
	}
	return e.verifier, nil
}
