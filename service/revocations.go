package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
	"go.uber.org/zap"
)

// Revocations tracks access tokens revoked before their natural expiry
type Revocations struct {
	tokenizer ports.Tokenizer
	repo      ports.BlacklistRepository
	now       func() time.Time
}

func NewRevocations(tokenizer ports.Tokenizer, repo ports.BlacklistRepository) *Revocations {
	return &Revocations{tokenizer: tokenizer, repo: repo, now: time.Now}
}

// Blacklist records token until its own expiry. Blacklisting the same token
// twice is a no-op.
func (r *Revocations) Blacklist(ctx context.Context, token string, userID uuid.UUID) error {
	expiresAt, err := r.tokenizer.ExpiryOf(token)
	if err != nil {
		return fmt.Errorf("failed to read token expiry: %w", err)
	}

	entry := &core.BlacklistEntry{
		ID:            uuid.New(),
		Token:         token,
		UserID:        userID,
		BlacklistedAt: r.now(),
		ExpiresAt:     expiresAt,
	}
	if err := r.repo.Add(ctx, entry); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

// IsBlacklisted is an exact-match lookup on the raw token
func (r *Revocations) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	return r.repo.Exists(ctx, token)
}

// CleanupExpired prunes entries whose expiry is at or before now. Tokens
// behind those entries are already rejected by their exp claim.
func (r *Revocations) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := r.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up blacklist: %w", err)
	}
	return n, nil
}

// RunCleanup calls CleanupExpired every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (r *Revocations) RunCleanup(ctx context.Context, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.CleanupExpired(ctx, r.now())
			if err != nil {
				logger.Warn("blacklist cleanup failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("blacklist cleanup", zap.Int64("removed", n))
			}
		}
	}
}
