// internal/service/order/interfaces/dlt_handler.go
package interfaces

import (
	"context"
	"sync"

	"github.com/segmentio/kafka-go"

	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/mq"
)

// DeadLetterConsumerAdapter 监听过期检查任务的死信主题。
// 进入死信的消息说明业务处理反复失败，这里只负责把完整上下文
// 打进结构化日志供人工排查，重放由运维工具完成。
type DeadLetterConsumerAdapter struct {
	reader  *kafka.Reader
	wg      sync.WaitGroup
	stopped bool
}

func NewDeadLetterConsumerAdapter(reader *kafka.Reader) *DeadLetterConsumerAdapter {
	return &DeadLetterConsumerAdapter{reader: reader}
}

func (a *DeadLetterConsumerAdapter) Start(ctx context.Context) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", a.reader.Config().Topic).Msg("✅ Dead Letter Consumer Adapter started.")
		for {
			if a.stopped {
				return
			}
			msg, err := a.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 Dead Letter Consumer Adapter shutting down.")
					return
				}
				continue
			}

			a.logDeadLetter(ctx, msg)

			// 死信消息记完日志即算处理完成，直接提交
			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit dead letter message")
			}
		}
	}()
	return nil
}

func (a *DeadLetterConsumerAdapter) Stop(ctx context.Context) {
	a.stopped = true
	a.reader.Close()
	a.wg.Wait()
	logger.Ctx(ctx).Info().Str("topic", a.reader.Config().Topic).Msg("✅ Dead Letter Consumer Adapter stopped.")
}

func (a *DeadLetterConsumerAdapter) logDeadLetter(ctx context.Context, msg kafka.Message) {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}

	logger.Ctx(ctx).Error().
		Str("reason", "dead_letter_message_received").
		Str("original_topic", headers[mq.HeaderOriginalTopic]).
		Str("original_partition", headers[mq.HeaderOriginalPartition]).
		Str("original_offset", headers[mq.HeaderOriginalOffset]).
		Str("exception_type", headers[mq.HeaderExceptionFqcn]).
		Str("exception_message", headers[mq.HeaderExceptionMessage]).
		Str("listing_id", string(msg.Key)).
		Str("payload", string(msg.Value)).
		Msg("🚨 CRITICAL: expiry check moved to dead letter topic")
}
