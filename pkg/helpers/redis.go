package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func RedisSetJSON(ctx context.Context, rdb redis.Cmdable, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, b, ttl).Err()
}

// RedisGetJSON decodes key into dest. found is false when the key is absent.
func RedisGetJSON[T any](ctx context.Context, rdb redis.Cmdable, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, err
	}
	return true, nil
}

func RedisDel(ctx context.Context, rdb redis.Cmdable, key string) error {
	return rdb.Del(ctx, key).Err()
}

// RedisKV adapts a redis client to the small key/value surface the services
// use for tokens, idempotency keys and the product cache.
type RedisKV struct {
	Client redis.Cmdable
}

// NewRedisKV returns nil when rdb is nil so callers can keep the
// "nil means disabled" convention.
func NewRedisKV(rdb *redis.Client) *RedisKV {
	if rdb == nil {
		return nil
	}
	return &RedisKV{Client: rdb}
}

func (k *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := k.Client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (k *RedisKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return k.Client.Set(ctx, key, value, ttl).Err()
}

func (k *RedisKV) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return k.Client.SetNX(ctx, key, value, ttl).Result()
}

func (k *RedisKV) Incr(ctx context.Context, key string) (int64, error) {
	return k.Client.Incr(ctx, key).Result()
}

func (k *RedisKV) Del(ctx context.Context, key string) error {
	return k.Client.Del(ctx, key).Err()
}
