package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"verdant/internal/pkg/mq"
	"verdant/internal/service/order/domain"
)

// NotificationKafkaAdapter 实现了 port.NotificationProducer 接口。
// 每次状态流转成功后，向 Kafka 发布一条 OrderStatusChanged 事件，
// 供聊天服务和其它下游消费。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

// NewNotificationKafkaAdapter 创建一个新的状态事件生产者适配器。
func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

// PublishStatusChanged 发布状态变更事件。
// 以 OrderID 作为分区键，保证同一笔交易的事件有序。
func (a *NotificationKafkaAdapter) PublishStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "marshal status changed event")
	}

	// 调用通用的 mq.ProduceMessage，它会自动处理追踪上下文注入
	return mq.ProduceMessage(ctx, a.writer, []byte(event.OrderID), eventBytes)
}

// Close 关闭底层的Kafka writer。
func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
