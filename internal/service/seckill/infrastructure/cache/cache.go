// internal/service/seckill/infrastructure/cache/cache.go
package cache

import (
	"context"
	"strconv"
	"time"

	"seckill/internal/pkg/logger"
	"seckill/internal/pkg/redis"
	"seckill/internal/service/seckill/domain"
)

const (
	keyPrefix = "seckill:"

	// entryTTL 固定一小时。缓存只影响暴露判断的新鲜度，
	// 库存正确性始终由事务内的条件扣减兜底，过期即重建
	entryTTL = 3600 * time.Second
)

// SeckillCache 缓存秒杀商品元数据。
// 它是纯旁路的：任何读写故障都不向调用方传播，读故障视作未命中，
// 写故障只记日志。绝不能把它当作库存判断的事实来源
type SeckillCache struct {
	raw RawStore
}

// NewSeckillCache 创建一个 Redis 后端的商品缓存
func NewSeckillCache(client *redis.Client) *SeckillCache {
	return &SeckillCache{raw: &redisRawStore{client: client}}
}

func newSeckillCacheWithRaw(raw RawStore) *SeckillCache {
	return &SeckillCache{raw: raw}
}

func cacheKey(seckillID int64) string {
	return keyPrefix + strconv.FormatInt(seckillID, 10)
}

// GetSeckill 命中时反序列化返回；未命中、传输故障、解码故障一律返回 nil
func (c *SeckillCache) GetSeckill(ctx context.Context, seckillID int64) *domain.Seckill {
	bytes, ok, err := c.raw.RawGet(ctx, cacheKey(seckillID))
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("seckill_id", seckillID).
			Msg("cache get failed, falling back to store")
		return nil
	}
	if !ok {
		return nil
	}

	seckill, err := unmarshalSeckill(bytes)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("seckill_id", seckillID).
			Msg("cache entry corrupted, falling back to store")
		return nil
	}
	return seckill
}

// PutSeckill 以固定过期时间写入整个商品快照，返回写入是否成功。
// 永远不更新既有条目的单个字段，缓存只做整体重建
func (c *SeckillCache) PutSeckill(ctx context.Context, seckill *domain.Seckill) bool {
	err := c.raw.RawSetWithExpiry(ctx, cacheKey(seckill.SeckillID), marshalSeckill(seckill), entryTTL)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("seckill_id", seckill.SeckillID).
			Msg("cache put failed")
		return false
	}
	return true
}
