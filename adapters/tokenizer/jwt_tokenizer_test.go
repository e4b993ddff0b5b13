package tokenizer

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func testPrincipal() core.Principal {
	return core.Principal{UserID: uuid.New(), Email: "alice@example.com", Role: core.RoleManager}
}

func TestIssueParseRoundTrip(t *testing.T) {
	tk := NewJWTTokenizer(testSecret, "sentinel")
	p := testPrincipal()

	token, issued, err := tk.Issue(p, 15*time.Minute)
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
	assert.NotEmpty(t, issued.ID)

	claims, err := tk.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, p, claims.Principal)
	assert.Equal(t, issued.ID, claims.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt, 2*time.Second)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, 2*time.Second)
}

func TestIssuedTokensAreDistinct(t *testing.T) {
	tk := NewJWTTokenizer(testSecret, "sentinel")
	p := testPrincipal()

	a, _, err := tk.Issue(p, time.Minute)
	require.NoError(t, err)
	b, _, err := tk.Issue(p, time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseExpired(t *testing.T) {
	tk := NewJWTTokenizer(testSecret, "sentinel")

	token, _, err := tk.Issue(testPrincipal(), -time.Minute)
	require.NoError(t, err)

	_, err = tk.Parse(token)
	require.ErrorIs(t, err, core.ErrExpiredToken)
}

func TestParseExpiredWithinLeeway(t *testing.T) {
	tk := NewJWTTokenizer(testSecret, "sentinel", WithLeeway(time.Minute))

	token, _, err := tk.Issue(testPrincipal(), -10*time.Second)
	require.NoError(t, err)

	_, err = tk.Parse(token)
	require.NoError(t, err)
}

func TestParseInvalidSignature(t *testing.T) {
	other := NewJWTTokenizer([]byte("ffffffffffffffffffffffffffffffff"), "sentinel")
	token, _, err := other.Issue(testPrincipal(), time.Minute)
	require.NoError(t, err)

	tk := NewJWTTokenizer(testSecret, "sentinel")
	_, err = tk.Parse(token)
	require.ErrorIs(t, err, core.ErrInvalidSignature)
}

func TestParseExpiredWithBadSignatureIsRejected(t *testing.T) {
	other := NewJWTTokenizer([]byte("ffffffffffffffffffffffffffffffff"), "sentinel")
	token, _, err := other.Issue(testPrincipal(), -time.Hour)
	require.NoError(t, err)

	tk := NewJWTTokenizer(testSecret, "sentinel")
	_, err = tk.Parse(token)
	require.Error(t, err)
	assert.True(t, core.IsTokenError(err))
}

func TestParseMalformed(t *testing.T) {
	tk := NewJWTTokenizer(testSecret, "sentinel")

	for _, raw := range []string{"", "not-a-token", "a.b.c", "a.b"} {
		_, err := tk.Parse(raw)
		require.ErrorIs(t, err, core.ErrMalformedToken, "token %q", raw)
	}
}

func TestParseUnsupported(t *testing.T) {
	tk := NewJWTTokenizer(testSecret, "sentinel")
	p := testPrincipal()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "sentinel",
			Subject:   p.Email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: p.UserID.String(),
		Email:  p.Email,
		Role:   p.Role.String(),
	}

	t.Run("alg none", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tk.Parse(token)
		require.ErrorIs(t, err, core.ErrUnsupportedToken)
	})

	t.Run("other hmac", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
		require.NoError(t, err)
		_, err = tk.Parse(token)
		require.ErrorIs(t, err, core.ErrUnsupportedToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		foreign := NewJWTTokenizer(testSecret, "someone-else")
		token, _, err := foreign.Issue(p, time.Minute)
		require.NoError(t, err)
		_, err = tk.Parse(token)
		require.ErrorIs(t, err, core.ErrUnsupportedToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		c := claims
		c.Role = "ROOT"
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(testSecret)
		require.NoError(t, err)
		_, err = tk.Parse(token)
		require.ErrorIs(t, err, core.ErrUnsupportedToken)
	})

	t.Run("missing exp", func(t *testing.T) {
		c := claims
		c.ExpiresAt = nil
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(testSecret)
		require.NoError(t, err)
		_, err = tk.Parse(token)
		require.ErrorIs(t, err, core.ErrUnsupportedToken)
	})
}

func TestExpiryOf(t *testing.T) {
	tk := NewJWTTokenizer(testSecret, "sentinel")

	token, issued, err := tk.Issue(testPrincipal(), -time.Minute)
	require.NoError(t, err)

	exp, err := tk.ExpiryOf(token)
	require.NoError(t, err)
	assert.True(t, exp.Equal(issued.ExpiresAt))

	_, err = tk.ExpiryOf("garbage")
	require.ErrorIs(t, err, core.ErrMalformedToken)
}

func TestMissingSecret(t *testing.T) {
	tk := NewJWTTokenizer(nil, "sentinel")

	_, _, err := tk.Issue(testPrincipal(), time.Minute)
	require.ErrorIs(t, err, core.ErrSigningKeyUnavailable)

	signed, _, err := NewJWTTokenizer(testSecret, "sentinel").Issue(testPrincipal(), time.Minute)
	require.NoError(t, err)
	_, err = tk.Parse(signed)
	require.ErrorIs(t, err, core.ErrSigningKeyUnavailable)
	assert.False(t, core.IsTokenError(err))
}

func TestShortSecretIsUnavailable(t *testing.T) {
	tk := NewJWTTokenizer([]byte("too-short"), "sentinel")

	_, _, err := tk.Issue(testPrincipal(), time.Minute)
	require.ErrorIs(t, err, core.ErrSigningKeyUnavailable)

	signed, _, err := NewJWTTokenizer(testSecret, "sentinel").Issue(testPrincipal(), time.Minute)
	require.NoError(t, err)
	_, err = tk.Parse(signed)
	require.ErrorIs(t, err, core.ErrSigningKeyUnavailable)
}
