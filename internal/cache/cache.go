package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache: key not found")

// Store is the shared cache capability injected into services. The redirect
// cache, the spam cooldown and the geo cache are separate key namespaces that
// may share one backing store.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Add writes the key only if it does not exist yet. The write is atomic:
	// of two concurrent Adds for the same key exactly one returns true.
	Add(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, keys ...string) error
	// Remember returns the cached value for key, computing and storing it via
	// fn on a miss. Backend failures degrade to calling fn directly.
	Remember(ctx context.Context, key string, ttl time.Duration, fn func() (string, error)) (string, error)
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return val, err
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Add(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (s *RedisStore) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}

func (s *RedisStore) Remember(ctx context.Context, key string, ttl time.Duration, fn func() (string, error)) (string, error) {
	val, err := s.Get(ctx, key)
	if err == nil {
		return val, nil
	}

	val, err = fn()
	if err != nil {
		return "", err
	}

	// Best effort: a failed write must not fail the caller.
	_ = s.Set(ctx, key, val, ttl)

	return val, nil
}
