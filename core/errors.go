package core

import "errors"

// Token verification failures. All of them collapse to ErrUnauthorized at the
// request boundary and are only told apart in logs.
var (
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrExpiredToken     = errors.New("token has expired")
	ErrUnsupportedToken = errors.New("unsupported token")
	ErrBlacklistedToken = errors.New("token has been revoked")
)

var (
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAuthenticationFailure = errors.New("invalid email or password")
	ErrAlreadyLoggedOut      = errors.New("already logged out")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenExpired  = errors.New("refresh token has expired")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email is already in use")
	ErrInvalidRole  = errors.New("invalid role")
	ErrInvalidInput = errors.New("invalid input")

	ErrSigningKeyUnavailable = errors.New("signing key unavailable")
)

// IsTokenError reports whether err is one of the token verification failures.
func IsTokenError(err error) bool {
	return errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrUnsupportedToken) ||
		errors.Is(err, ErrBlacklistedToken)
}

// TokenErrorKind returns a short label for a token verification failure,
// suitable for logs and metrics.
func TokenErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrUnsupportedToken):
		return "unsupported"
	case errors.Is(err, ErrBlacklistedToken):
		return "blacklisted"
	default:
		return "unknown"
	}
}
