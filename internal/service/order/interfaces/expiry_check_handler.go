package interfaces

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/mq"
	"verdant/internal/service/order/application"
	"verdant/internal/service/order/domain"
)

// ExpiryCheckConsumerAdapter 是一个驱动适配器，它监听到期的挂牌过期
// 检查消息并驱动应用服务。处理失败的消息交给 FailureHandler 送入死信队列。
type ExpiryCheckConsumerAdapter struct {
	reader         *kafka.Reader
	appSvc         *application.ListingApplicationService
	failureHandler *mq.FailureHandler
	wg             sync.WaitGroup
	stopped        bool
}

// NewExpiryCheckConsumerAdapter 创建一个新的Kafka消费者适配器。
func NewExpiryCheckConsumerAdapter(reader *kafka.Reader, appSvc *application.ListingApplicationService, failureHandler *mq.FailureHandler) *ExpiryCheckConsumerAdapter {
	return &ExpiryCheckConsumerAdapter{
		reader:         reader,
		appSvc:         appSvc,
		failureHandler: failureHandler,
	}
}

// Start 开始监听Kafka主题。这是一个长期运行的方法。
func (a *ExpiryCheckConsumerAdapter) Start(ctx context.Context) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().Str("topic", a.reader.Config().Topic).Msg("✅ Expiry Check Consumer Adapter started.")
		for {
			if a.stopped {
				return
			}
			// 使用FetchMessage而不是ReadMessage，以便控制提交时机
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("🛑 Expiry Check Consumer Adapter shutting down.")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read message, retrying")
				time.Sleep(1 * time.Second)
				continue
			}

			newCtx := mq.ExtractTraceContext(ctx, msg.Headers)
			a.processMessage(newCtx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit messages")
			}
		}
	}()

	return nil
}

// Stop 优雅地停止消费者。
func (a *ExpiryCheckConsumerAdapter) Stop(ctx context.Context) {
	a.stopped = true
	a.reader.Close()
	a.wg.Wait()
	logger.Ctx(ctx).Info().Msg("✅ Expiry Check Consumer Adapter stopped.")
}

// processMessage 反序列化消息并调用应用服务，失败则移交死信处理。
func (a *ExpiryCheckConsumerAdapter) processMessage(ctx context.Context, msg kafka.Message) {
	var event domain.ListingExpiryCheckRequested
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal expiry check event")
		a.failureHandler.Handle(ctx, msg, err)
		return
	}

	if err := a.appSvc.ProcessExpiryCheck(ctx, &event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("listing_id", event.ListingID).Msg("failed to handle expiry check")
		a.failureHandler.Handle(ctx, msg, err)
	}
}
