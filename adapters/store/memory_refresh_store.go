package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
)

// MemoryRefreshTokenStore keeps refresh tokens in memory, indexed by user and by token value
type MemoryRefreshTokenStore struct {
	byUser  map[uuid.UUID]core.RefreshToken
	byToken map[string]uuid.UUID
	mu      sync.RWMutex
}

// NewMemoryRefreshTokenStore creates a new in-memory refresh token store
func NewMemoryRefreshTokenStore() ports.RefreshTokenRepository {
	return &MemoryRefreshTokenStore{
		byUser:  make(map[uuid.UUID]core.RefreshToken),
		byToken: make(map[string]uuid.UUID),
	}
}

func (s *MemoryRefreshTokenStore) Save(ctx context.Context, rt *core.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.byUser[rt.UserID]; ok {
		delete(s.byToken, old.Token)
	}
	s.byUser[rt.UserID] = *rt
	s.byToken[rt.Token] = rt.UserID

	return nil
}

func (s *MemoryRefreshTokenStore) FindByToken(ctx context.Context, token string) (*core.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	userID, ok := s.byToken[token]
	if !ok {
		return nil, core.ErrRefreshTokenNotFound
	}
	rt := s.byUser[userID]
	return &rt, nil
}

func (s *MemoryRefreshTokenStore) DeleteByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID, ok := s.byToken[token]; ok {
		delete(s.byToken, token)
		delete(s.byUser, userID)
	}
	return nil
}

func (s *MemoryRefreshTokenStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rt, ok := s.byUser[userID]; ok {
		delete(s.byToken, rt.Token)
		delete(s.byUser, userID)
	}
	return nil
}

// Count returns the number of stored refresh tokens
func (s *MemoryRefreshTokenStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byUser)
}
