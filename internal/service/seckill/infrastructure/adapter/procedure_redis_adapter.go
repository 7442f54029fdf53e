// internal/service/seckill/infrastructure/adapter/procedure_redis_adapter.go
package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"seckill/internal/pkg/redis"
)

const purchaseScriptName = "seckill_purchase"

// PurchaseProcedureAdapter 是 port.ProcedureRunner 的 Redis 实现：
// 用一段 Lua 脚本把 去重校验 + 库存扣减 压成单次往返的原子过程。
// 脚本返回的状态码与 domain.ExecutionState 的数值一致
type PurchaseProcedureAdapter struct {
	redisClient *redis.Client
}

// NewPurchaseProcedureAdapter 创建过程执行适配器，创建时注册所需脚本
func NewPurchaseProcedureAdapter(redisClient *redis.Client) (*PurchaseProcedureAdapter, error) {
	if err := redisClient.LoadScriptFromContent(purchaseScriptName, purchaseScript); err != nil {
		return nil, errors.Wrap(err, "load purchase script")
	}
	return &PurchaseProcedureAdapter{redisClient: redisClient}, nil
}

// RunPurchaseProcedure 执行秒杀过程，返回状态码。
// killTime 以毫秒传入脚本，供窗口判断使用
func (a *PurchaseProcedureAdapter) RunPurchaseProcedure(ctx context.Context, seckillID, userPhone int64, killTime time.Time) (int, error) {
	stockKey := fmt.Sprintf("seckill:stock:{%d}", seckillID)
	userSetKey := fmt.Sprintf("seckill:users:{%d}", seckillID)
	windowKey := fmt.Sprintf("seckill:window:{%d}", seckillID)

	keys := []string{stockKey, userSetKey, windowKey}
	result, err := a.redisClient.RunScript(ctx, purchaseScriptName, keys, userPhone, killTime.UnixMilli())
	if err != nil {
		return 0, errors.Wrap(err, "run purchase script")
	}

	code, ok := result.(int64)
	if !ok {
		return 0, errors.Errorf("unexpected result type from Lua script: %T", result)
	}
	return int(code), nil
}

// PrepareStock (测试和管理用) 初始化脚本路径所需的库存、去重集合与时间窗口
func (a *PurchaseProcedureAdapter) PrepareStock(ctx context.Context, seckillID int64, stock int32, start, end time.Time) error {
	stockKey := fmt.Sprintf("seckill:stock:{%d}", seckillID)
	userSetKey := fmt.Sprintf("seckill:users:{%d}", seckillID)
	windowKey := fmt.Sprintf("seckill:window:{%d}", seckillID)

	pipe := a.redisClient.GetClient().Pipeline()
	pipe.Set(ctx, stockKey, stock, 0)
	pipe.Del(ctx, userSetKey)
	pipe.HSet(ctx, windowKey, "start", start.UnixMilli(), "end", end.UnixMilli())
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "prepare seckill stock")
	}
	return nil
}

var purchaseScript = `
-- KEYS[1]: 库存 Key,       例如 seckill:stock:{1000}
-- KEYS[2]: 成功用户集合,    例如 seckill:users:{1000}
-- KEYS[3]: 时间窗口 Hash,   例如 seckill:window:{1000}, 字段 start/end 为毫秒时间戳
-- ARGV[1]: 用户标识
-- ARGV[2]: 秒杀时刻的毫秒时间戳

-- 1. 窗口校验：不在 [start, end) 内直接判结束
local start_ms = tonumber(redis.call('hget', KEYS[3], 'start'))
local end_ms = tonumber(redis.call('hget', KEYS[3], 'end'))
local now_ms = tonumber(ARGV[2])
if (not start_ms) or (not end_ms) or now_ms < start_ms or now_ms >= end_ms then
    return 0
end

-- 2. 去重校验：先查重，避免重复请求去碰热点库存
if redis.call('sismember', KEYS[2], ARGV[1]) == 1 then
    return -1
end

-- 3. 库存校验与扣减
local stock = tonumber(redis.call('get', KEYS[1]))
if stock and stock > 0 then
    redis.call('decr', KEYS[1])
    redis.call('sadd', KEYS[2], ARGV[1])
    return 1
else
    return 0
end
`
