// internal/pkg/mq/failure_handler.go
package mq

import (
	"context"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"

	"verdant/internal/pkg/logger"
)

// 死信消息头，记录原始消息的来源和失败原因，便于人工排查后重放。
const (
	HeaderOriginalTopic     = "x-original-topic"
	HeaderOriginalPartition = "x-original-partition"
	HeaderOriginalOffset    = "x-original-offset"
	HeaderExceptionFqcn     = "x-exception-type"
	HeaderExceptionMessage  = "x-exception-message"
)

// FailureHandler 将处理失败的消息移交到死信主题（DLT）。
// 消费者在业务处理返回错误后调用 Handle，然后照常提交 offset，
// 避免毒丸消息阻塞整个分区。
type FailureHandler struct {
	dltWriter *kafka.Writer
}

// NewFailureHandler 创建一个失败处理器，deadLetterTopic 通常为 "<topic>.DLT"。
func NewFailureHandler(brokers []string, deadLetterTopic string) *FailureHandler {
	return &FailureHandler{
		dltWriter: NewKafkaWriter(brokers, deadLetterTopic),
	}
}

// Handle 把失败消息连同上下文头写入死信主题。
// 写 DLT 本身失败属于需要告警的严重情况，只能记日志，不能再抛回消费循环。
func (h *FailureHandler) Handle(ctx context.Context, msg kafka.Message, processingErr error) {
	dltMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: HeaderOriginalTopic, Value: []byte(msg.Topic)},
			kafka.Header{Key: HeaderOriginalPartition, Value: []byte(strconv.Itoa(msg.Partition))},
			kafka.Header{Key: HeaderOriginalOffset, Value: []byte(strconv.FormatInt(msg.Offset, 10))},
			kafka.Header{Key: HeaderExceptionFqcn, Value: []byte(fmt.Sprintf("%T", processingErr))},
			kafka.Header{Key: HeaderExceptionMessage, Value: []byte(processingErr.Error())},
		),
	}
	InjectTraceContext(ctx, &dltMsg.Headers)

	if err := h.dltWriter.WriteMessages(ctx, dltMsg); err != nil {
		logger.Ctx(ctx).Error().
			Err(err).
			Str("original_topic", msg.Topic).
			Str("key", string(msg.Key)).
			Msg("🚨 CRITICAL: failed to forward message to DLT")
		return
	}
	logger.Ctx(ctx).Warn().
		Err(processingErr).
		Str("original_topic", msg.Topic).
		Str("key", string(msg.Key)).
		Msg("message forwarded to DLT")
}

// Close 关闭底层的 DLT writer。
func (h *FailureHandler) Close() error {
	return h.dltWriter.Close()
}
