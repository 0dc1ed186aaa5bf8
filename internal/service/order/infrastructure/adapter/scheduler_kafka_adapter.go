package adapter

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/mq"
	"verdant/internal/service/order/domain"
)

const (
	// 延迟检查消息最终投递到的真实主题
	ExpiryCheckTopic = "listing-expiry-check-topic"

	// 延迟主题名中的时长即消息停留时长，由 delay-scheduler 搬运
	expiryCheckDelay = 10 * time.Minute
)

// SchedulerKafkaAdapter 实现了 port.DelayScheduler 接口。
// 挂牌发布后向延迟主题写入一条过期检查任务，
// 由 delay-scheduler 到期后搬运到真实主题。
type SchedulerKafkaAdapter struct {
	delayWriter *kafka.Writer
}

// NewSchedulerKafkaAdapter 创建一个新的延迟任务调度器适配器。
func NewSchedulerKafkaAdapter(brokers []string, delayTopic string) *SchedulerKafkaAdapter {
	return &SchedulerKafkaAdapter{
		delayWriter: mq.NewKafkaWriter(brokers, delayTopic),
	}
}

// ScheduleExpiryCheck 发送一条挂牌过期检查的延迟消息。
func (a *SchedulerKafkaAdapter) ScheduleExpiryCheck(ctx context.Context, listingID string, publishedAt time.Time) error {
	taskEvent := domain.ListingExpiryCheckRequested{
		TraceID:     trace.SpanFromContext(ctx).SpanContext().TraceID().String(),
		ListingID:   listingID,
		PublishedAt: publishedAt,
	}
	taskBytes, err := json.Marshal(&taskEvent)
	if err != nil {
		return err
	}

	delayTimestamp := time.Now().Add(expiryCheckDelay).Format(time.RFC3339)

	msg := kafka.Message{
		Key:   []byte(listingID),
		Value: taskBytes,
		Headers: []kafka.Header{
			{Key: "real-topic", Value: []byte(ExpiryCheckTopic)},
			{Key: "delay-timestamp", Value: []byte(delayTimestamp)},
		},
	}
	mq.InjectTraceContext(ctx, &msg.Headers)

	return a.delayWriter.WriteMessages(ctx, msg)
}

// Close 关闭底层的Kafka writer。
func (a *SchedulerKafkaAdapter) Close() error {
	return a.delayWriter.Close()
}
