// internal/service/seckill/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"seckill/internal/pkg/mq"
	"seckill/internal/service/seckill/domain"
)

// NotificationKafkaAdapter 是 port.PurchaseNotifier 的 Kafka 实现。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

// NewNotificationKafkaAdapter 创建一个新的通知生产者适配器。
func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

// NotifyPurchaseSucceeded 把秒杀成功事件投递到 Kafka。
// 以用户标识作为消息 key，同一用户的事件落在同一分区
func (a *NotificationKafkaAdapter) NotifyPurchaseSucceeded(ctx context.Context, record *domain.PurchaseRecord) error {
	event := domain.PurchaseSucceededEvent{
		EventID:   uuid.NewString(),
		SeckillID: record.SeckillID,
		UserPhone: record.UserPhone,
		KilledAt:  record.CreateTime,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal purchase event")
	}

	// mq.ProduceMessage 会自动把追踪上下文注入消息头
	key := []byte(strconv.FormatInt(record.UserPhone, 10))
	return mq.ProduceMessage(ctx, a.writer, key, eventBytes)
}

// Close 关闭底层的 Kafka writer。
func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
