// internal/service/seckill/infrastructure/cache/raw.go
package cache

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"seckill/internal/pkg/redis"
)

// RawStore 是缓存传输接口：按 key 存取字节串并带过期时间。
// RawGet 的第二个返回值为 false 表示未命中
type RawStore interface {
	RawGet(ctx context.Context, key string) ([]byte, bool, error)
	RawSetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// redisRawStore 是 RawStore 的 Redis 实现
type redisRawStore struct {
	client *redis.Client
}

func (r *redisRawStore) RawGet(ctx context.Context, key string) ([]byte, bool, error) {
	bytes, err := r.client.GetClient().Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	return bytes, true, nil
}

func (r *redisRawStore) RawSetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.GetClient().Set(ctx, key, value, ttl).Err()
}
