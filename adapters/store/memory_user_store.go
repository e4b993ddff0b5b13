package store

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
)

// MemoryUserStore is an in-memory UserRepository
// This is primarily intended for testing and local runs
type MemoryUserStore struct {
	users   map[uuid.UUID]core.User
	byEmail map[string]uuid.UUID
	mu      sync.RWMutex
}

// NewMemoryUserStore creates an empty user store
func NewMemoryUserStore() ports.UserRepository {
	return &MemoryUserStore{
		users:   make(map[uuid.UUID]core.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

func (s *MemoryUserStore) Create(ctx context.Context, user *core.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, taken := s.byEmail[email]; taken {
		return core.ErrEmailTaken
	}
	s.users[user.ID] = *user
	s.byEmail[email] = user.ID
	return nil
}

func (s *MemoryUserStore) ByID(ctx context.Context, id uuid.UUID) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	return &u, nil
}

func (s *MemoryUserStore) ByEmail(ctx context.Context, email string) (*core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	u := s.users[id]
	return &u, nil
}
