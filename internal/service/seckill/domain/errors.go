// internal/service/seckill/domain/errors.go
package domain

import "github.com/pkg/errors"

var (
	// ErrSeckillNotFound 商品不存在
	ErrSeckillNotFound = errors.New("seckill not found")

	// ErrRepeatKill 同一用户对同一商品的重复购买，由存储层唯一键冲突检出
	ErrRepeatKill = errors.New("seckill repeated")

	// ErrSeckillClosed 条件扣减未影响任何行：库存已空或窗口已过
	ErrSeckillClosed = errors.New("seckill is closed")

	// ErrPurchaseNotFound 成功明细不存在
	ErrPurchaseNotFound = errors.New("purchase record not found")
)
