// internal/service/seckill/infrastructure/cache/reader.go
package cache

import (
	"context"

	"seckill/internal/service/seckill/domain"
)

// CachedItemReader 实现两级读取：先查缓存，未命中或缓存故障时退回
// 内层存储，存储命中后回填缓存。对调用方而言缓存只影响延迟，
// 不影响结果
type CachedItemReader struct {
	cache *SeckillCache
	inner domain.ItemReader
}

// NewCachedItemReader 用商品缓存包裹一个存储读取器
func NewCachedItemReader(cache *SeckillCache, inner domain.ItemReader) *CachedItemReader {
	return &CachedItemReader{cache: cache, inner: inner}
}

// QueryByID 先缓存后存储。回填失败被缓存层吞掉，不影响本次结果
func (r *CachedItemReader) QueryByID(ctx context.Context, seckillID int64) (*domain.Seckill, error) {
	if seckill := r.cache.GetSeckill(ctx, seckillID); seckill != nil {
		return seckill, nil
	}

	seckill, err := r.inner.QueryByID(ctx, seckillID)
	if err != nil {
		return nil, err
	}

	r.cache.PutSeckill(ctx, seckill)
	return seckill, nil
}
