// internal/service/seckill/application/dto.go
package application

import "seckill/internal/service/seckill/domain"

// Exposer 是暴露决策的结果：仅当秒杀开启时携带口令；
// 未开启时附上当前时间和起止时间，调用方可以据此解释原因
type Exposer struct {
	Exposed   bool   `json:"exposed"`
	MD5       string `json:"md5,omitempty"`
	SeckillID int64  `json:"seckillId"`

	// 以下三个字段只在未开启时填充，均为毫秒时间戳
	Now   int64 `json:"now,omitempty"`
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

// SeckillExecution 是一次秒杀执行的结果，State 是终态标签，
// Record 仅在 Success 时非空
type SeckillExecution struct {
	SeckillID int64                  `json:"seckillId"`
	State     domain.ExecutionState  `json:"state"`
	StateInfo string                 `json:"stateInfo"`
	Record    *domain.PurchaseRecord `json:"record,omitempty"`
}

func newExecution(seckillID int64, state domain.ExecutionState) *SeckillExecution {
	return &SeckillExecution{
		SeckillID: seckillID,
		State:     state,
		StateInfo: state.Info(),
	}
}
