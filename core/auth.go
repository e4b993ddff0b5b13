package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MinSecretLength is the shortest HMAC signing secret accepted, in bytes
const MinSecretLength = 32

// Principal is the identity carried by a validated access token.
// It is rebuilt from the token claims on every request and never persisted.
type Principal struct {
	UserID uuid.UUID // Identifier of the authenticated user
	Email  string    // Email the token was issued for
	Role   Role      // Role granted at issue time
}

// Can reports whether the principal's role grants the capability.
func (p Principal) Can(c Capability) bool {
	return p.Role.Can(c)
}

// Claims are the decoded contents of an access token
type Claims struct {
	ID        string    // Token identifier (jti)
	Principal Principal // Identity asserted by the token
	IssuedAt  time.Time // When the token was issued
	ExpiresAt time.Time // When the token stops being valid
}

// TokenPair is returned by login and refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration // Lifetime of the access token
}

// RefreshToken is the persisted record behind an opaque refresh token.
// At most one live record exists per user.
type RefreshToken struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Token      string
	ExpiryDate time.Time
}

// IsExpired reports whether the record is past its expiry at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiryDate)
}

// BlacklistEntry records an access token revoked before its natural expiry.
// The entry is only meaningful until ExpiresAt; afterwards the token is
// rejected by expiry alone and the entry may be pruned.
type BlacklistEntry struct {
	ID            uuid.UUID
	Token         string
	UserID        uuid.UUID
	BlacklistedAt time.Time
	ExpiresAt     time.Time
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
