package ports

import (
	"time"

	"github.com/layer-3/sentinel/core"
)

// Tokenizer issues and verifies signed access tokens
type Tokenizer interface {
	// Issue signs a token for the principal that expires after ttl.
	Issue(principal core.Principal, ttl time.Duration) (string, *core.Claims, error)

	// Parse verifies signature, issuer and expiry. It fails with one of
	// core.ErrMalformedToken, core.ErrInvalidSignature, core.ErrExpiredToken
	// or core.ErrUnsupportedToken.
	Parse(token string) (*core.Claims, error)

	// ExpiryOf returns the expiry of a correctly signed token, whether or not
	// it has already expired.
	ExpiryOf(token string) (time.Time, error)
}
