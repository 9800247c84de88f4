package localstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV keeps slots in Redis under "<namespace>:<key>" with no expiry.
type RedisKV struct {
	client    redis.UniversalClient
	namespace string
}

func NewRedisKV(client redis.UniversalClient, namespace string) *RedisKV {
	return &RedisKV{client: client, namespace: namespace}
}

func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.namespace+":"+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	return raw, err
}

func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.namespace+":"+key, value, 0).Err()
}
