// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// PreferenceTTL is how long a guest's preferences survive without a write.
const PreferenceTTL = 90 * 24 * time.Hour

// RedisStore keeps preferences in per-guest hashes and pushes action records
// onto ActionQueue for a downstream consumer.
type RedisStore struct {
	Rdb *redis.Client
}

// NewRedisStore connects to the Redis server at url (redis:// or rediss://)
// and verifies the connection.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{Rdb: rdb}, nil
}

func prefsKey(userID uuid.UUID) string {
	return "klondike:prefs:" + userID.String()
}

// LoadPreferences reads the hash for userID. Missing or unparsable fields
// fall back to the defaults.
func (s *RedisStore) LoadPreferences(ctx context.Context, userID uuid.UUID) (Preferences, error) {
	fields, err := s.Rdb.HGetAll(ctx, prefsKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return Preferences{}, fmt.Errorf("load preferences: %w", err)
	}
	p := DefaultPreferences()
	if v, ok := fields["sound"]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			p.Sound = b
		}
	}
	if v, ok := fields["draw_count"]; ok {
		if n, err := strconv.ParseUint(v, 10, 8); err == nil && (n == 1 || n == 3) {
			p.DrawCount = uint8(n)
		}
	}
	return p, nil
}

// SavePreferences writes p for userID and refreshes its expiry.
func (s *RedisStore) SavePreferences(ctx context.Context, userID uuid.UUID, p Preferences) error {
	key := prefsKey(userID)
	_, err := s.Rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"sound", strconv.FormatBool(p.Sound),
			"draw_count", strconv.Itoa(int(p.DrawCount)),
		)
		pipe.Expire(ctx, key, PreferenceTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// PublishGameAction pushes rec as JSON onto ActionQueue.
func (s *RedisStore) PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action record: %w", err)
	}
	if err := s.Rdb.RPush(ctx, ActionQueue, data).Err(); err != nil {
		return fmt.Errorf("publish action %d: %w", rec.ActionIndex, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *RedisStore) Close() error {
	return s.Rdb.Close()
}
