package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store with the same uniqueness semantics
// as the Postgres store. It backs tests and credential-less local runs.
type MemoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]User
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[uuid.UUID]User),
		now:   time.Now,
	}
}

func (s *MemoryStore) FindOrCreate(ctx context.Context, provider, providerID, email string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.lookup(provider, providerID); ok {
		return &u, nil
	}

	now := s.now()
	u := User{
		ID:         uuid.New(),
		Email:      NormalizeEmail(email),
		Provider:   provider,
		ProviderID: providerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.users[u.ID] = u
	return &u, nil
}

func (s *MemoryStore) FindByProviderAndID(ctx context.Context, provider, providerID string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.lookup(provider, providerID); ok {
		return &u, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByRefreshToken(ctx context.Context, token string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		return nil, ErrNotFound
	}
	for _, u := range s.users {
		if u.RefreshToken.Valid && u.RefreshToken.String == token {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateProfile(ctx context.Context, id uuid.UUID, name, imageURL string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	u = u.WithProfile(name, imageURL)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return &u, nil
}

func (s *MemoryStore) StoreRefreshToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}

	u = u.WithRefreshToken(token, expiry)
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *MemoryStore) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}

	u = u.WithoutRefreshToken()
	u.UpdatedAt = s.now()
	s.users[id] = u
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) lookup(provider, providerID string) (User, bool) {
	for _, u := range s.users {
		if u.Provider == provider && u.ProviderID == providerID {
			return u, true
		}
	}
	return User{}, false
}
