// README: Snapshot store backed by Redis (single key, last dump wins).
package snapshot

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "carpool:snapshot"

type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		key:    defaultKey,
	}
}

func (s *RedisStore) Save(ctx context.Context, data []byte) error {
	return s.client.Set(ctx, s.key, data, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
