package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
)

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
type JWTTokenizer struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// Option configures a JWTTokenizer
type Option func(*JWTTokenizer)

// WithLeeway tolerates clock skew when checking exp and iat.
func WithLeeway(d time.Duration) Option {
	return func(j *JWTTokenizer) { j.leeway = d }
}

// NewJWTTokenizer creates a new JWT tokenizer. A secret shorter than
// core.MinSecretLength is treated as missing: issuing and parsing fail with
// core.ErrSigningKeyUnavailable.
func NewJWTTokenizer(secret []byte, issuer string, opts ...Option) ports.Tokenizer {
	j := &JWTTokenizer{secret: secret, issuer: issuer}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Issue signs an access token for the principal
func (j *JWTTokenizer) Issue(principal core.Principal, ttl time.Duration) (string, *core.Claims, error) {
	if !j.hasKey() {
		return "", nil, core.ErrSigningKeyUnavailable
	}

	now := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.issuer,
			Subject:   principal.Email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: principal.UserID.String(),
		Email:  principal.Email,
		Role:   principal.Role.String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return signedToken, &core.Claims{
		ID:        claims.ID,
		Principal: principal,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Parse verifies an access token and returns its claims
func (j *JWTTokenizer) Parse(tokenStr string) (*core.Claims, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, j.keyFunc,
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(j.leeway),
	)
	if err != nil {
		return nil, classify(err)
	}

	return toCore(claims)
}

// ExpiryOf returns the exp claim of a correctly signed token, skipping
// expiry validation
func (j *JWTTokenizer) ExpiryOf(tokenStr string) (time.Time, error) {
	claims := &AccessClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, j.keyFunc, jwt.WithoutClaimsValidation())
	if err != nil {
		return time.Time{}, classify(err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", core.ErrUnsupportedToken)
	}
	return claims.ExpiresAt.Time, nil
}

func (j *JWTTokenizer) keyFunc(token *jwt.Token) (interface{}, error) {
	// Validate the signing method
	if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	if !j.hasKey() {
		return nil, core.ErrSigningKeyUnavailable
	}
	return j.secret, nil
}

func (j *JWTTokenizer) hasKey() bool {
	return len(j.secret) >= core.MinSecretLength
}

func classify(err error) error {
	switch {
	case errors.Is(err, core.ErrSigningKeyUnavailable):
		return err
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", core.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", core.ErrExpiredToken, err)
	default:
		// Unknown algorithms, foreign issuers, missing or premature claims
		return fmt.Errorf("%w: %v", core.ErrUnsupportedToken, err)
	}
}

func toCore(claims *AccessClaims) (*core.Claims, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad id claim", core.ErrUnsupportedToken)
	}
	role := core.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: bad role claim", core.ErrUnsupportedToken)
	}

	out := &core.Claims{
		ID: claims.ID,
		Principal: core.Principal{
			UserID: userID,
			Email:  claims.Email,
			Role:   role,
		},
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
