// internal/service/order/domain/port/scheduler.go
package port

import (
	"context"
	"time"
)

// DelayScheduler 调度一个延迟执行的挂牌过期检查。
// 当前实现经由 Kafka 延迟主题和 delay-scheduler 服务完成投递。
type DelayScheduler interface {
	ScheduleExpiryCheck(ctx context.Context, listingID string, publishedAt time.Time) error
	Close() error
}
