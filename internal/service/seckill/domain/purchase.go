// internal/service/seckill/domain/purchase.go
package domain

import "time"

// PurchaseRecord 是秒杀成功明细，(SeckillID, UserPhone) 在存储层
// 由联合主键保证唯一，这就是幂等性的全部来源。
// 记录一旦写入（并随扣减一起提交）就不再被本核心修改或删除
type PurchaseRecord struct {
	SeckillID  int64
	UserPhone  int64
	State      int16
	CreateTime time.Time
}

// PurchaseSucceededEvent 秒杀成功后发布到消息队列的领域事件
type PurchaseSucceededEvent struct {
	EventID   string    `json:"eventId"`
	SeckillID int64     `json:"seckillId"`
	UserPhone int64     `json:"userPhone"`
	KilledAt  time.Time `json:"killedAt"`
}
