package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
)

// DefaultRefreshTTL is how long a refresh token stays valid
const DefaultRefreshTTL = 7 * 24 * time.Hour

// RefreshTokens owns issuing, checking and rotating refresh tokens.
// Each user holds at most one; creating a new one replaces the old.
type RefreshTokens struct {
	repo ports.RefreshTokenRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewRefreshTokens creates the refresh token service. A non-positive ttl
// selects DefaultRefreshTTL.
func NewRefreshTokens(repo ports.RefreshTokenRepository, ttl time.Duration) *RefreshTokens {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &RefreshTokens{repo: repo, ttl: ttl, now: time.Now}
}

// Create replaces any refresh token held by userID with a fresh one.
// Concurrent calls for one user race and the last write wins.
func (r *RefreshTokens) Create(ctx context.Context, userID uuid.UUID) (*core.RefreshToken, error) {
	// Generate random token
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	rt := &core.RefreshToken{
		ID:         uuid.New(),
		UserID:     userID,
		Token:      hex.EncodeToString(tokenBytes),
		ExpiryDate: r.now().Add(r.ttl),
	}
	if err := r.repo.Save(ctx, rt); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rt, nil
}

// FindByToken fails with core.ErrRefreshTokenNotFound if token is unknown
func (r *RefreshTokens) FindByToken(ctx context.Context, token string) (*core.RefreshToken, error) {
	if token == "" {
		return nil, core.ErrRefreshTokenNotFound
	}
	return r.repo.FindByToken(ctx, token)
}

// VerifyExpiration deletes an expired record and fails with
// core.ErrRefreshTokenExpired; a live record is returned unchanged.
func (r *RefreshTokens) VerifyExpiration(ctx context.Context, rt *core.RefreshToken) (*core.RefreshToken, error) {
	if !rt.IsExpired(r.now()) {
		return rt, nil
	}
	if err := r.repo.DeleteByToken(ctx, rt.Token); err != nil {
		return nil, fmt.Errorf("failed to delete expired refresh token: %w", err)
	}
	return nil, core.ErrRefreshTokenExpired
}

func (r *RefreshTokens) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return r.repo.DeleteByUserID(ctx, userID)
}

func (r *RefreshTokens) DeleteByToken(ctx context.Context, token string) error {
	return r.repo.DeleteByToken(ctx, token)
}

// TTL returns the configured refresh token lifetime
func (r *RefreshTokens) TTL() time.Duration { return r.ttl }
