// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是全局的 zerolog 实例，由 Init 初始化。
// 各服务在 main 中调用一次 Init，之后统一通过 Ctx(ctx) 获取带追踪信息的日志器。
var Logger zerolog.Logger

func init() {
	// 未显式 Init 时的兜底配置，保证库代码和测试中也能安全打日志
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Init 初始化全局日志器。
// serviceName 会作为固定字段写入每条日志，便于多服务日志汇聚后检索。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		level = lvl
	}

	Logger = zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回一个绑定了当前追踪上下文的日志器。
// 如果 ctx 中存在有效的 Span，会自动附加 trace_id/span_id 字段，
// 这样日志就可以和 Jaeger 中的链路互相跳转。
func Ctx(ctx context.Context) *zerolog.Logger {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return &Logger
	}
	l := Logger.With().
		Str("trace_id", spanCtx.TraceID().String()).
		Str("span_id", spanCtx.SpanID().String()).
		Logger()
	return &l
}
