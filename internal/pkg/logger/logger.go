// internal/pkg/logger/logger.go
package logger

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Logger 是全局的结构化日志器。各服务在 bootstrap 中通过 Init 设置 service 字段。
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Init 初始化全局日志器，绑定服务名。
func Init(serviceName string) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	Logger = zerolog.New(os.Stderr).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// Ctx 返回一个绑定了当前链路 trace_id / span_id 的日志器，
// 便于在 Jaeger 中用日志里的 ID 反查整条链路。
func Ctx(ctx context.Context) *zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return &Logger
	}
	l := Logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
	return &l
}
