// internal/service/seckill/domain/port/procedure.go
package port

import (
	"context"
	"time"
)

// ProcedureRunner 是可选的单往返执行路径的出站端口：
// 把 去重校验 + 条件扣减 整个序列推到一个服务端原子过程里执行，
// 只换回一个状态码。状态码空间与 domain.ExecutionState 一致，
// 由 domain.StateOf 完成映射
type ProcedureRunner interface {
	RunPurchaseProcedure(ctx context.Context, seckillID, userPhone int64, killTime time.Time) (int, error)
}
