package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
)

// RefreshTokenRepository persists refresh tokens keyed by user.
type RefreshTokenRepository interface {
	// Save stores rt, atomically replacing any record held by rt.UserID.
	Save(ctx context.Context, rt *core.RefreshToken) error

	// FindByToken returns core.ErrRefreshTokenNotFound when absent.
	FindByToken(ctx context.Context, token string) (*core.RefreshToken, error)

	// DeleteByToken and DeleteByUserID succeed when nothing matches.
	DeleteByToken(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

// BlacklistRepository persists revoked access tokens
type BlacklistRepository interface {
	// Add stores the entry. Adding a token that is already present is a no-op.
	Add(ctx context.Context, entry *core.BlacklistEntry) error

	// Exists is an exact-match lookup on the token value.
	Exists(ctx context.Context, token string) (bool, error)

	// DeleteExpired removes entries whose ExpiresAt is not after now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// UserRepository resolves principals by id or email
type UserRepository interface {
	// Create fails with core.ErrEmailTaken when the email is registered.
	Create(ctx context.Context, user *core.User) error

	// ByID and ByEmail fail with core.ErrUserNotFound when absent.
	ByID(ctx context.Context, id uuid.UUID) (*core.User, error)
	ByEmail(ctx context.Context, email string) (*core.User, error)
}
