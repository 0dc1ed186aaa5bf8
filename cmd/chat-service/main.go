// cmd/chat-service/main.go
package main

import (
	"context"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"verdant/internal/pkg/bootstrap"
	"verdant/internal/pkg/httpclient"
	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/nacos"
	"verdant/internal/pkg/redis"
	"verdant/internal/service/chat/application"
	"verdant/internal/service/chat/infrastructure"
	"verdant/internal/service/chat/infrastructure/adapter"
	"verdant/internal/service/chat/interfaces"
)

const serviceName = "chat-service"

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
	conversationRepo := infrastructure.NewGormConversationRepository(db)
	messageRepo := infrastructure.NewGormMessageRepository(db)

	// 2. 未读数
	redisClient, err := redis.NewClient(context.Background(), cfg.Infra.Redis.Addr, cfg.Infra.Redis.Password, cfg.Infra.Redis.DB)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	unread := adapter.NewUnreadRedisAdapter(redisClient.GetClient())

	// 3. 订单服务客户端。服务发现走 Nacos，与 bootstrap 注册用同一套配置。
	tracer := otel.Tracer(serviceName)
	registry, err := nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize nacos client")
	}
	orderClient := adapter.NewOrderHTTPAdapter(httpclient.NewClient(tracer, registry))

	// 4. 应用服务与 HTTP 入口
	chatService := application.NewChatApplicationService(conversationRepo, messageRepo, tracer, unread, orderClient)
	handler := interfaces.NewChatHandler(chatService)

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
