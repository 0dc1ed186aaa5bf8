// cmd/order-service/main.go
package main

import (
	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/mq"
	"verdant/internal/pkg/zookeeper"
	"verdant/internal/service/order/application"
	"verdant/internal/service/order/infrastructure"
	"verdant/internal/service/order/infrastructure/adapter"
	"verdant/internal/service/order/infrastructure/rule"
	"verdant/internal/service/order/interfaces"
)

const (
	serviceName = "order-service"

	statusEventTopic    = "order-status-changed-topic"
	expiryConsumerGroup = "listing-expiry-consumer-group"
	expiryDeadLetter    = "listing-expiry-check-topic-dlt"
	dltConsumerGroup    = "listing-expiry-dlt-consumer-group"
)

// main 函数是应用的"组装根" (Composition Root)
// 它的核心职责是：创建并组装所有依赖项，然后启动应用。
func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	// 1. 持久化
	db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
	}
	if err := infrastructure.AutoMigrate(db); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to migrate schema")
	}
	orderRepo := infrastructure.NewGormOrderRepository(db)
	listingRepo := infrastructure.NewGormListingRepository(db)
	uow := infrastructure.NewGormUnitOfWork(db)

	// 2. 分布式锁
	zkConn, err := zookeeper.Connect(cfg.Infra.Zookeeper.Servers)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to zookeeper")
	}
	transitionLock := adapter.NewLockZookeeperAdapter(zkConn)

	// 3. 出站适配器：状态事件、延迟调度、规则引擎
	notifier := adapter.NewNotificationKafkaAdapter(mq.NewKafkaWriter(cfg.Infra.Kafka.Brokers, statusEventTopic))
	defer notifier.Close()
	scheduler := adapter.NewSchedulerKafkaAdapter(cfg.Infra.Kafka.Brokers, cfg.Marketplace.ListingExpiryDelayTopic)
	defer scheduler.Close()
	ruleEngine, err := rule.NewCELRuleEngineAdapter()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to build rule engine")
	}

	// 4. 应用服务
	tracer := otel.Tracer(serviceName)
	orderService := application.NewOrderApplicationService(uow, orderRepo, listingRepo, tracer, transitionLock, notifier)
	listingService := application.NewListingApplicationService(listingRepo, tracer, scheduler, ruleEngine, cfg.Marketplace.ListingExpiryRule)

	// 5. 入站适配器：到期的过期检查消息 + 死信监控
	failureHandler := mq.NewFailureHandler(cfg.Infra.Kafka.Brokers, expiryDeadLetter)
	defer failureHandler.Close()
	expiryConsumer := interfaces.NewExpiryCheckConsumerAdapter(
		mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, adapter.ExpiryCheckTopic, expiryConsumerGroup),
		listingService,
		failureHandler,
	)
	dltConsumer := interfaces.NewDeadLetterConsumerAdapter(
		mq.NewKafkaReader(cfg.Infra.Kafka.Brokers, expiryDeadLetter, dltConsumerGroup),
	)

	handler := interfaces.NewOrderHandler(orderService, listingService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8081,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
		Runners: []bootstrap.Runner{expiryConsumer, dltConsumer},
	})
}
