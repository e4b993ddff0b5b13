package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
)

// MemoryBlacklistStore is an in-memory implementation of BlacklistRepository
type MemoryBlacklistStore struct {
	entries map[string]core.BlacklistEntry
	mu      sync.RWMutex
}

// NewMemoryBlacklistStore creates a new in-memory blacklist store
func NewMemoryBlacklistStore() ports.BlacklistRepository {
	return &MemoryBlacklistStore{
		entries: make(map[string]core.BlacklistEntry),
	}
}

// Add records a revoked token; an existing entry for the token is kept
func (s *MemoryBlacklistStore) Add(ctx context.Context, entry *core.BlacklistEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[entry.Token]; exists {
		return nil
	}
	s.entries[entry.Token] = *entry

	return nil
}

// Exists checks if a token is blacklisted
func (s *MemoryBlacklistStore) Exists(ctx context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.entries[token]
	return exists, nil
}

// DeleteExpired prunes entries that expired at or before now
func (s *MemoryBlacklistStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for token, entry := range s.entries {
		if !entry.ExpiresAt.After(now) {
			delete(s.entries, token)
			removed++
		}
	}

	return removed, nil
}
