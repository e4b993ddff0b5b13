package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/layer-3/sentinel/core"
	"github.com/layer-3/sentinel/ports"
	"github.com/redis/go-redis/v9"
)

const defaultBlacklistPrefix = "sentinel:blacklist:"

// RedisBlacklistStore is a Redis implementation of BlacklistRepository.
//
// Each entry lives under prefix+sha256(token) with no TTL; a sorted set scored
// by expiry (unix millis) indexes the keys for DeleteExpired.
type RedisBlacklistStore struct {
	client   *redis.Client
	prefix   string
	indexKey string
}

type redisBlacklistEntry struct {
	ID            string `json:"id"`
	Token         string `json:"token"`
	UserID        string `json:"user_id"`
	BlacklistedAt int64  `json:"blacklisted_at"`
	ExpiresAt     int64  `json:"expires_at"`
}

// NewRedisBlacklistStore creates a new Redis blacklist store
func NewRedisBlacklistStore(client *redis.Client) ports.BlacklistRepository {
	return &RedisBlacklistStore{
		client:   client,
		prefix:   defaultBlacklistPrefix,
		indexKey: defaultBlacklistPrefix + "by-expiry",
	}
}

func (s *RedisBlacklistStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + hex.EncodeToString(sum[:])
}

// Add stores the entry unless the token is already blacklisted
func (s *RedisBlacklistStore) Add(ctx context.Context, entry *core.BlacklistEntry) error {
	key := s.key(entry.Token)

	payload, err := json.Marshal(redisBlacklistEntry{
		ID:            entry.ID.String(),
		Token:         entry.Token,
		UserID:        entry.UserID.String(),
		BlacklistedAt: entry.BlacklistedAt.UnixMilli(),
		ExpiresAt:     entry.ExpiresAt.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal blacklist entry: %w", err)
	}

	// An identical token always carries the same expiry, so re-adding the
	// index member for a duplicate is harmless.
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, payload, 0)
		pipe.ZAdd(ctx, s.indexKey, redis.Z{Score: float64(entry.ExpiresAt.UnixMilli()), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

// Exists checks if a token is blacklisted in Redis
func (s *RedisBlacklistStore) Exists(ctx context.Context, token string) (bool, error) {
	val, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	return val > 0, nil
}

// DeleteExpired removes entries whose expiry is at or before now
func (s *RedisBlacklistStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	keys, err := s.client.ZRangeByScore(ctx, s.indexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to list expired blacklist entries: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}

	var del *redis.IntCmd
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, keys...)
		pipe.ZRem(ctx, s.indexKey, members...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired blacklist entries: %w", err)
	}

	return del.Val(), nil
}
