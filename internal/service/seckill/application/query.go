// internal/service/seckill/application/query.go
package application

import (
	"context"

	"seckill/internal/service/seckill/domain"
)

const defaultListLimit = 100

// QueryService 提供秒杀商品的只读查询。
// 列表直查存储，单个商品复用两级读取以便顺带预热缓存
type QueryService struct {
	items domain.ItemReader
	store domain.InventoryStore
}

// NewQueryService 创建一个新的查询服务实例
func NewQueryService(items domain.ItemReader, store domain.InventoryStore) *QueryService {
	return &QueryService{items: items, store: store}
}

// GetSeckillList 分页查询秒杀商品列表
func (s *QueryService) GetSeckillList(ctx context.Context, offset, limit int) ([]*domain.Seckill, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.QueryAll(ctx, offset, limit)
}

// GetByID 查询单个秒杀商品
func (s *QueryService) GetByID(ctx context.Context, seckillID int64) (*domain.Seckill, error) {
	return s.items.QueryByID(ctx, seckillID)
}
