// internal/service/seckill/application/engine.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"seckill/internal/pkg/logger"
	"seckill/internal/service/seckill/domain"
	"seckill/internal/service/seckill/domain/port"
	"seckill/internal/service/seckill/token"
)

// ExecutionEngine 驱动秒杀购买的状态机：
// Pending -> {Success, RepeatKill, End, InvalidToken, InnerError}。
// 口令校验在任何存储访问之前完成；其余全部步骤在单个事务内执行，
// 任一步失败整个事务回滚，不会留下可见的部分写入
type ExecutionEngine struct {
	store     domain.InventoryStore
	tokens    *token.Generator
	procedure port.ProcedureRunner  // 可为 nil，表示未配置单往返路径
	notifier  port.PurchaseNotifier // 可为 nil，表示不发成功通知
	tracer    trace.Tracer
	now       func() time.Time
}

// NewExecutionEngine 创建执行引擎。procedure 和 notifier 允许传 nil
func NewExecutionEngine(store domain.InventoryStore, tokens *token.Generator,
	procedure port.ProcedureRunner, notifier port.PurchaseNotifier) *ExecutionEngine {
	return &ExecutionEngine{
		store:     store,
		tokens:    tokens,
		procedure: procedure,
		notifier:  notifier,
		tracer:    otel.Tracer("seckill-execution"),
		now:       time.Now,
	}
}

// Execute 执行一次秒杀购买，返回终态结果。
//
// 先插明细再扣库存是刻意的：唯一键冲突能在触碰热点库存行之前把
// 重复请求短路掉，降低热点行上的锁竞争；代价是真正售罄时的首次
// 请求多付出一次写入加回滚
func (e *ExecutionEngine) Execute(ctx context.Context, seckillID, userPhone int64, md5 string) *SeckillExecution {
	ctx, span := e.tracer.Start(ctx, "execution.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("seckill.id", seckillID),
		attribute.Int64("user.phone", userPhone),
	)

	// 1. 口令校验，失败时不发生任何存储访问
	if !e.tokens.Verify(seckillID, md5) {
		span.AddEvent("token rejected")
		return newExecution(seckillID, domain.StateInvalidToken)
	}

	killTime := e.now()
	var record *domain.PurchaseRecord

	err := e.store.InTransaction(ctx, func(tx domain.InventoryOps) error {
		// 2. 幂等插入成功明细，冲突即重复秒杀
		inserted, err := tx.InsertPurchaseIfAbsent(ctx, seckillID, userPhone)
		if err != nil {
			return errors.Wrap(err, "insert purchase record")
		}
		if inserted == 0 {
			return domain.ErrRepeatKill
		}

		// 3. 条件扣减库存，零行受影响说明售罄或窗口已过，
		//    返回错误让整个事务（包括上面的插入）回滚
		affected, err := tx.ConditionalDecrement(ctx, seckillID, killTime)
		if err != nil {
			return errors.Wrap(err, "reduce stock")
		}
		if affected == 0 {
			return domain.ErrSeckillClosed
		}

		// 4. 读回本次写入的明细，随事务一起提交
		record, err = tx.QueryPurchase(ctx, seckillID, userPhone)
		if err != nil {
			return errors.Wrap(err, "query purchase record")
		}
		return nil
	})

	switch {
	case err == nil:
		span.AddEvent("seckill succeeded")
		e.notifySuccess(ctx, record)
		execution := newExecution(seckillID, domain.StateSuccess)
		execution.Record = record
		return execution

	case errors.Is(err, domain.ErrRepeatKill):
		span.AddEvent("repeat kill rejected")
		return newExecution(seckillID, domain.StateRepeatKill)

	case errors.Is(err, domain.ErrSeckillClosed):
		span.AddEvent("seckill closed")
		return newExecution(seckillID, domain.StateEnd)

	default:
		// 未预期的存储/传输故障：原因留在日志里供诊断，
		// 调用方只看到 InnerError 终态
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Int64("seckill_id", seckillID).
			Int64("user_phone", userPhone).
			Msg("seckill inner error")
		return newExecution(seckillID, domain.StateInnerError)
	}
}

// ExecuteByProcedure 走单往返的服务端过程路径，状态机语义与 Execute 一致。
// 过程自身保证原子性，这里只负责口令校验和状态码翻译
func (e *ExecutionEngine) ExecuteByProcedure(ctx context.Context, seckillID, userPhone int64, md5 string) *SeckillExecution {
	ctx, span := e.tracer.Start(ctx, "execution.ExecuteByProcedure")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("seckill.id", seckillID),
		attribute.Int64("user.phone", userPhone),
	)

	if e.procedure == nil {
		return newExecution(seckillID, domain.StateInnerError)
	}
	if !e.tokens.Verify(seckillID, md5) {
		span.AddEvent("token rejected")
		return newExecution(seckillID, domain.StateInvalidToken)
	}

	code, err := e.procedure.RunPurchaseProcedure(ctx, seckillID, userPhone, e.now())
	if err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Int64("seckill_id", seckillID).
			Msg("purchase procedure failed")
		return newExecution(seckillID, domain.StateInnerError)
	}

	state := domain.StateOf(code)
	execution := newExecution(seckillID, state)
	if state != domain.StateSuccess {
		return execution
	}

	// 明细可能由外部过程异步落库，查不到不改变终态
	record, err := e.store.QueryPurchase(ctx, seckillID, userPhone)
	if err != nil && !errors.Is(err, domain.ErrPurchaseNotFound) {
		logger.Ctx(ctx).Warn().Err(err).
			Int64("seckill_id", seckillID).
			Msg("query purchase record after procedure failed")
	}
	execution.Record = record
	if record != nil {
		e.notifySuccess(ctx, record)
	}
	return execution
}

// notifySuccess 尽力发布成功通知，失败只记日志，不影响已提交的结果
func (e *ExecutionEngine) notifySuccess(ctx context.Context, record *domain.PurchaseRecord) {
	if e.notifier == nil || record == nil {
		return
	}
	if err := e.notifier.NotifyPurchaseSucceeded(ctx, record); err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Int64("seckill_id", record.SeckillID).
			Msg("purchase notification failed")
	}
}
