// internal/service/seckill/domain/seckill.go
package domain

import "time"

// Seckill 是秒杀商品聚合根。
// Number 是剩余库存，只允许通过 InventoryOps.ConditionalDecrement 在
// 事务内扣减，任何组件都不得在事务外读改写它
type Seckill struct {
	SeckillID  int64
	Name       string
	Number     int32
	StartTime  time.Time
	EndTime    time.Time
	CreateTime time.Time
}

// WithinWindow 判断 now 是否处于秒杀窗口 [StartTime, EndTime) 内
func (s *Seckill) WithinWindow(now time.Time) bool {
	return !now.Before(s.StartTime) && now.Before(s.EndTime)
}
