package token

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "refresh:"

// consumeScript deletes the record only when it still belongs to the given
// user, in one atomic server-side step.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps refresh records as TTL-bound keys, so stale records expire
// on their own without a maintenance sweep.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRefreshTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, tokenID, userID string) error {
	if err := s.client.Set(ctx, redisKeyPrefix+tokenID, userID, s.ttl).Err(); err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}

	return nil
}

func (s *RedisStore) Consume(ctx context.Context, tokenID, userID string) (bool, error) {
	deleted, err := consumeScript.Run(ctx, s.client, []string{redisKeyPrefix + tokenID}, userID).Int()
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}

	return deleted > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, tokenID string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+tokenID).Err(); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	return nil
}
