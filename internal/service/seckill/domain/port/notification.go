// internal/service/seckill/domain/port/notification.go
package port

import (
	"context"

	"seckill/internal/service/seckill/domain"
)

// PurchaseNotifier 是秒杀成功通知的出站端口，由基础设施层实现。
// 通知是尽力而为的：投递失败不改变已提交的购买结果
type PurchaseNotifier interface {
	NotifyPurchaseSucceeded(ctx context.Context, record *domain.PurchaseRecord) error
}
