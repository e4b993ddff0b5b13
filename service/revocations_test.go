package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/sentinel/adapters/store"
	"github.com/layer-3/sentinel/adapters/tokenizer"
	"github.com/layer-3/sentinel/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRevocationsBlacklistUsesTokenExpiry(t *testing.T) {
	tk := tokenizer.NewJWTTokenizer(testSecret, "sentinel")
	repo := store.NewMemoryBlacklistStore()
	r := NewRevocations(tk, repo)
	ctx := context.Background()

	p := core.Principal{UserID: uuid.New(), Email: "a@example.com", Role: core.RoleCustomer}
	token, claims, err := tk.Issue(p, time.Hour)
	require.NoError(t, err)

	require.NoError(t, r.Blacklist(ctx, token, p.UserID))
	require.NoError(t, r.Blacklist(ctx, token, p.UserID))

	ok, err := r.IsBlacklisted(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.IsBlacklisted(ctx, token+"x")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := r.CleanupExpired(ctx, claims.ExpiresAt.Add(-time.Second))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.CleanupExpired(ctx, claims.ExpiresAt)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	ok, err = r.IsBlacklisted(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevocationsRejectsGarbage(t *testing.T) {
	tk := tokenizer.NewJWTTokenizer(testSecret, "sentinel")
	r := NewRevocations(tk, store.NewMemoryBlacklistStore())

	err := r.Blacklist(context.Background(), "garbage", uuid.New())
	require.ErrorIs(t, err, core.ErrMalformedToken)
}

func TestRevocationsCleanupStoreFailure(t *testing.T) {
	tk := tokenizer.NewJWTTokenizer(testSecret, "sentinel")
	r := NewRevocations(tk, brokenBlacklist{})

	_, err := r.CleanupExpired(context.Background(), time.Now())
	require.Error(t, err)
}

func TestRefreshTokensVerifyExpiration(t *testing.T) {
	repo := store.NewMemoryRefreshTokenStore()
	r := NewRefreshTokens(repo, time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	rt, err := r.Create(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, userID, rt.UserID)
	assert.WithinDuration(t, time.Now().Add(time.Minute), rt.ExpiryDate, time.Second)

	got, err := r.VerifyExpiration(ctx, rt)
	require.NoError(t, err)
	assert.Equal(t, rt, got)

	r.now = func() time.Time { return rt.ExpiryDate.Add(time.Millisecond) }
	_, err = r.VerifyExpiration(ctx, rt)
	require.ErrorIs(t, err, core.ErrRefreshTokenExpired)

	_, err = r.FindByToken(ctx, rt.Token)
	require.ErrorIs(t, err, core.ErrRefreshTokenNotFound)
}

func TestRefreshTokensCreateReplaces(t *testing.T) {
	repo := store.NewMemoryRefreshTokenStore()
	r := NewRefreshTokens(repo, time.Minute)
	ctx := context.Background()
	userID := uuid.New()

	a, err := r.Create(ctx, userID)
	require.NoError(t, err)
	b, err := r.Create(ctx, userID)
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)

	_, err = r.FindByToken(ctx, a.Token)
	require.ErrorIs(t, err, core.ErrRefreshTokenNotFound)
	got, err := r.FindByToken(ctx, b.Token)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	require.NoError(t, r.DeleteByToken(ctx, b.Token))
	require.NoError(t, r.DeleteByUserID(ctx, userID))
	assert.Equal(t, 0, repo.(*store.MemoryRefreshTokenStore).Count())
}

func TestRunCleanup(t *testing.T) {
	tk := tokenizer.NewJWTTokenizer(testSecret, "sentinel")
	repo := store.NewMemoryBlacklistStore()
	r := NewRevocations(tk, repo)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, repo.Add(ctx, &core.BlacklistEntry{
		ID:        uuid.New(),
		Token:     "stale",
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}))

	obs, logs := observer.New(zap.InfoLevel)
	done := make(chan struct{})
	go func() {
		r.RunCleanup(ctx, 10*time.Millisecond, zap.New(obs))
		close(done)
	}()

	require.Eventually(t, func() bool {
		ok, err := r.IsBlacklisted(context.Background(), "stale")
		return err == nil && !ok
	}, time.Second, 10*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 1, logs.FilterMessage("blacklist cleanup").Len())
}
