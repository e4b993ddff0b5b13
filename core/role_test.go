package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" admin ")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("ROOT")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestRoleCapabilities(t *testing.T) {
	assert.True(t, RoleAdmin.Can(CapUsersManage))
	assert.True(t, RoleManager.Can(CapCatalogWrite))
	assert.False(t, RoleManager.Can(CapUsersManage))
	assert.True(t, RoleCustomer.Can(CapCatalogRead))
	assert.False(t, RoleCustomer.Can(CapCatalogWrite))
	assert.False(t, Role("ROLE_ADMIN").Can(CapCatalogRead))

	caps := RoleCustomer.Capabilities()
	caps[0] = CapUsersManage
	assert.False(t, RoleCustomer.Can(CapUsersManage), "Capabilities must return a copy")
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := Principal{UserID: uuid.New(), Email: "a@example.com", Role: RoleCustomer}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestTokenErrorKind(t *testing.T) {
	cases := map[error]string{
		ErrMalformedToken:   "malformed",
		ErrInvalidSignature: "invalid_signature",
		ErrExpiredToken:     "expired",
		ErrUnsupportedToken: "unsupported",
		ErrBlacklistedToken: "blacklisted",
		errors.New("other"): "unknown",
	}
	for err, want := range cases {
		wrapped := fmt.Errorf("%w: %w", ErrUnauthorized, err)
		assert.Equal(t, want, TokenErrorKind(wrapped))
	}
	assert.True(t, IsTokenError(fmt.Errorf("parse: %w", ErrExpiredToken)))
	assert.False(t, IsTokenError(ErrRefreshTokenNotFound))
}
