package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisBlacklist(t *testing.T) (ports.BlacklistRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedisBlacklistStore(rdb), mr
}

func blacklistBackends(t *testing.T) map[string]ports.BlacklistRepository {
	redisStore, _ := newRedisBlacklist(t)
	return map[string]ports.BlacklistRepository{
		"memory": NewMemoryBlacklistStore(),
		"redis":  redisStore,
	}
}

func entry(token string, expiresAt time.Time) *core.BlacklistEntry {
	return &core.BlacklistEntry{
		ID:            uuid.New(),
		Token:         token,
		UserID:        uuid.New(),
		BlacklistedAt: time.Now(),
		ExpiresAt:     expiresAt,
	}
}

func TestBlacklistAddExists(t *testing.T) {
	for name, s := range blacklistBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ok, err := s.Exists(ctx, "tok-a")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Add(ctx, entry("tok-a", time.Now().Add(time.Hour))))

			ok, err = s.Exists(ctx, "tok-a")
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = s.Exists(ctx, "tok-a ")
			require.NoError(t, err)
			assert.False(t, ok, "lookup must be exact")
		})
	}
}

func TestBlacklistAddIsIdempotent(t *testing.T) {
	for name, s := range blacklistBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			exp := time.Now().Add(time.Hour)

			require.NoError(t, s.Add(ctx, entry("dup", exp)))
			require.NoError(t, s.Add(ctx, entry("dup", exp)))

			n, err := s.DeleteExpired(ctx, exp.Add(time.Second))
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
		})
	}
}

func TestBlacklistDeleteExpired(t *testing.T) {
	for name, s := range blacklistBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().Truncate(time.Millisecond)

			require.NoError(t, s.Add(ctx, entry("past", now.Add(-time.Hour))))
			require.NoError(t, s.Add(ctx, entry("edge", now)))
			require.NoError(t, s.Add(ctx, entry("future", now.Add(time.Hour))))

			n, err := s.DeleteExpired(ctx, now)
			require.NoError(t, err)
			assert.EqualValues(t, 2, n)

			for token, want := range map[string]bool{"past": false, "edge": false, "future": true} {
				ok, err := s.Exists(ctx, token)
				require.NoError(t, err)
				assert.Equal(t, want, ok, token)
			}

			n, err = s.DeleteExpired(ctx, now)
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestRedisBlacklistUnavailable(t *testing.T) {
	s, mr := newRedisBlacklist(t)
	mr.Close()

	_, err := s.Exists(context.Background(), "tok")
	require.Error(t, err)
	require.Error(t, s.Add(context.Background(), entry("tok", time.Now().Add(time.Minute))))
}
