// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"verdant/internal/pkg/config"
	"verdant/internal/pkg/logger"
	"verdant/internal/pkg/nacos"
	"verdant/internal/pkg/tracing"
	"verdant/internal/pkg/utils"
)

var (
	currentConfig *config.Config
	configOnce    sync.Once
)

// Init 加载全局配置。必须在 StartService 之前调用一次。
func Init() {
	configOnce.Do(func() {
		path := os.Getenv("CONFIG_FILE")
		if path == "" {
			path = "configs/config.yaml"
		}
		cfg, err := config.Load(path)
		if err != nil {
			logger.Logger.Fatal().Err(err).Str("path", path).Msg("failed to load config")
		}
		currentConfig = cfg
	})
}

// GetCurrentConfig 返回进程内的全局配置。
func GetCurrentConfig() *config.Config {
	if currentConfig == nil {
		Init()
	}
	return currentConfig
}

// AppCtx 传递给各服务的注册回调，暴露通用组件。
type AppCtx struct {
	Mux   *http.ServeMux
	Nacos *nacos.Client
}

// Runner 是一个随服务启动的后台任务（Kafka 消费者、轮询器等）。
// Start 返回后任务应在后台运行；进程退出时 Stop 会被调用。
type Runner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context)
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 每个服务注册自己的 HTTP 路由
	Runners          []Runner            // 可选的后台任务
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	logger.Init(info.ServiceName)
	cfg := GetCurrentConfig()

	// 1. Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 2. 服务注册
	registry, err := nacos.NewClient(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize nacos client")
	}

	ip, err := utils.GetOutboundIP()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to get outbound IP address")
	}
	if err := registry.RegisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to register service with nacos")
	}

	// 3. HTTP Server 与后台任务
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Nacos: registry})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}

	runCtx, cancelRunners := context.WithCancel(context.Background())
	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		logger.Logger.Info().Str("addr", server.Addr).Msgf("%s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	for _, r := range info.Runners {
		r := r
		g.Go(func() error {
			return r.Start(gCtx)
		})
	}

	// 4. 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-gCtx.Done():
	}
	logger.Logger.Info().Msgf("shutting down service %s...", info.ServiceName)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 5. 按依赖的反序清理：注销、停后台任务、停 HTTP、冲刷 trace
	if err := registry.DeregisterServiceInstance(info.ServiceName, ip, info.Port); err != nil {
		logger.Logger.Error().Err(err).Msg("error deregistering from Nacos")
	}

	cancelRunners()
	for _, r := range info.Runners {
		r.Stop(shutdownCtx)
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down http server")
	}
	if err := g.Wait(); err != nil {
		logger.Logger.Error().Err(err).Msg("background task exited with error")
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down tracer provider")
	}

	logger.Logger.Info().Msgf("service %s gracefully shut down", info.ServiceName)
}
