// internal/service/seckill/domain/repository.go
package domain

import (
	"context"
	"time"
)

// ItemReader 只读地获取秒杀商品。
// 存储适配器和缓存适配器都实现它：缓存适配器包裹存储适配器构成两级
// 读取，缓存故障时总是退回内层，因此它对调用方的结果是透明的
type ItemReader interface {
	QueryByID(ctx context.Context, seckillID int64) (*Seckill, error)
}

// InventoryOps 是事务内可组合的库存原语，全部由持久层原子实现。
// ExecutionEngine 在单个事务里按 插入明细 -> 条件扣减 的顺序调用它们
type InventoryOps interface {
	// InsertPurchaseIfAbsent 幂等写入成功明细，返回插入的行数。
	// 返回 0 表示 (seckillID, userPhone) 已存在，即重复秒杀
	InsertPurchaseIfAbsent(ctx context.Context, seckillID, userPhone int64) (int64, error)

	// ConditionalDecrement 在库存大于零且 killTime 落在秒杀窗口内时
	// 扣减一件库存，返回受影响的行数。这是一条存储层的原子读改写，
	// 并发防超卖完全依赖它
	ConditionalDecrement(ctx context.Context, seckillID int64, killTime time.Time) (int64, error)

	// QueryPurchase 读取成功明细，不存在时返回 ErrPurchaseNotFound
	QueryPurchase(ctx context.Context, seckillID, userPhone int64) (*PurchaseRecord, error)
}

// InventoryStore 是持久存储的抽象边界。
// 事务边界由调用方控制：InTransaction 内 fn 返回错误（或 panic）时
// 整个事务回滚，否则提交
type InventoryStore interface {
	ItemReader

	QueryAll(ctx context.Context, offset, limit int) ([]*Seckill, error)
	QueryPurchase(ctx context.Context, seckillID, userPhone int64) (*PurchaseRecord, error)

	InTransaction(ctx context.Context, fn func(tx InventoryOps) error) error
}
