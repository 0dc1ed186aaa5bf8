// internal/service/order/domain/port/notification.go
package port

import (
	"context"

	"verdant/internal/service/order/domain"
)

// NotificationProducer 是状态变更事件的出站端口，由 Kafka 适配器实现。
type NotificationProducer interface {
	PublishStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error
	Close() error
}
