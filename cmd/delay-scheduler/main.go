// cmd/delay-scheduler/main.go
package main

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/mq"
)

const serviceName = "delay-scheduler"

// 支持的延迟级别和对应的主题。生产者按需要的延迟挑主题，
// 消息头里的 real-topic 决定到期后投递到哪里。
var delayLevels = map[string]time.Duration{
	"delay-topic-1m":  1 * time.Minute,
	"delay-topic-10m": 10 * time.Minute,
}

var tracer = otel.Tracer(serviceName)

// Scheduler 负责一个延迟级别的轮询搬运，实现 bootstrap.Runner。
type Scheduler struct {
	level       string
	delay       time.Duration
	brokers     []string
	kafkaReader *kafka.Reader

	// 每个真实主题一个独立的 writer
	kafkaWriters map[string]*kafka.Writer
	writerLock   sync.Mutex

	wg      sync.WaitGroup
	stopped bool
}

// NewScheduler 创建一个针对特定延迟级别的新调度器
func NewScheduler(brokers []string, level string, delay time.Duration) *Scheduler {
	return &Scheduler{
		level:        level,
		delay:        delay,
		brokers:      brokers,
		kafkaReader:  mq.NewKafkaReader(brokers, level, serviceName+"-group-"+level),
		kafkaWriters: make(map[string]*kafka.Writer),
	}
}

// Start 启动定时轮询器。
func (s *Scheduler) Start(ctx context.Context) error {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		logger.Ctx(ctx).Info().Str("level", s.level).Dur("delay", s.delay).Msg("✅ polling scheduler started")
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if s.stopped {
					return
				}
				s.checkAndPublish(ctx)
			case <-ctx.Done():
				logger.Ctx(ctx).Info().Str("level", s.level).Msg("🛑 polling scheduler shutting down")
				return
			}
		}
	}()
	return nil
}

// Stop 优雅地停止调度器。
func (s *Scheduler) Stop(ctx context.Context) {
	s.stopped = true
	s.kafkaReader.Close()
	s.closeWriters(ctx)
	s.wg.Wait()
}

// checkAndPublish 是轮询的核心逻辑：同一延迟级别内消息按进入顺序到期，
// 队头未到期就可以停止本轮检查。
func (s *Scheduler) checkAndPublish(parentCtx context.Context) {
	for {
		// FetchMessage 不自动提交 offset，投递成功才提交
		msg, err := s.kafkaReader.FetchMessage(parentCtx)
		if err != nil {
			// 没有新消息或上下文取消，等下一次 tick
			return
		}

		spanCtx := mq.ExtractTraceContext(parentCtx, msg.Headers)
		now := time.Now().UTC()
		deliveryTime := msg.Time.Add(s.delay)

		ctx, span := tracer.Start(spanCtx, "scheduler.CheckAndPublish", trace.WithAttributes(
			attribute.String("delay.level", s.level),
			attribute.String("delivery_time", deliveryTime.Format(time.DateTime)),
		))

		if !now.After(deliveryTime) {
			// 队头消息未到期，后续消息更不会到期
			span.AddEvent("HeadMessageNotDue")
			span.End()
			return
		}

		realTopic := getHeader(msg.Headers, "real-topic")
		if realTopic == "" {
			logger.Ctx(ctx).Error().Str("level", s.level).Msg("'real-topic' header missing, skipping message")
			// 这种消息也要提交，否则会被一直重复消费
			if err := s.kafkaReader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit skipped message")
			}
			span.End()
			continue
		}

		if err := s.publish(ctx, realTopic, msg); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("real_topic", realTopic).Msg("failed to publish due message")
			// 投递失败不提交 offset，等待下次轮询重试
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to publish to real topic")
			span.End()
			return
		}

		if err := s.kafkaReader.CommitMessages(ctx, msg); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("level", s.level).Msg("failed to commit after publish")
			span.RecordError(err)
			span.End()
			return
		}
		logger.Ctx(ctx).Info().Str("level", s.level).Str("real_topic", realTopic).Msg("due message published and committed")
		span.AddEvent("MessagePublishedAndCommitted", trace.WithAttributes(attribute.String("real.topic", realTopic)))
		span.End()
	}
}

// publish 将到期消息投递到真实业务主题，保留追踪上下文。
func (s *Scheduler) publish(ctx context.Context, realTopic string, msg kafka.Message) error {
	s.writerLock.Lock()
	writer, exists := s.kafkaWriters[realTopic]
	if !exists {
		writer = mq.NewKafkaWriter(s.brokers, realTopic)
		s.kafkaWriters[realTopic] = writer
	}
	s.writerLock.Unlock()

	publishMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
	}
	traceCtx := mq.ExtractTraceContext(ctx, msg.Headers)
	mq.InjectTraceContext(traceCtx, &publishMsg.Headers)

	return writer.WriteMessages(ctx, publishMsg)
}

func (s *Scheduler) closeWriters(ctx context.Context) {
	s.writerLock.Lock()
	defer s.writerLock.Unlock()
	for topic, writer := range s.kafkaWriters {
		if err := writer.Close(); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("topic", topic).Msg("failed to close writer")
		}
	}
}

func getHeader(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	runners := make([]bootstrap.Runner, 0, len(delayLevels))
	for level, delay := range delayLevels {
		runners = append(runners, NewScheduler(cfg.Infra.Kafka.Brokers, level, delay))
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8090,
		Runners:     runners,
	})
}
