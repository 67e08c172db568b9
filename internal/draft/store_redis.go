package draft

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "enroll/pkg/domain-errors"
)

// RedisStore persists artifacts in Redis with a per-key TTL so abandoned
// runs age out on their own. Keys arrive already namespaced via Key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a Redis-backed store. The TTL bounds how long an
// abandoned run's artifacts survive; every Save refreshes it.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, s.ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "redis set")
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "redis get")
	}
	return raw, nil
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "redis del")
	}
	return nil
}
