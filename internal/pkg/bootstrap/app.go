// internal/pkg/bootstrap/app.go
package bootstrap

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"webshop/internal/pkg/config"
	"webshop/internal/pkg/logger"
	"webshop/internal/pkg/registry"
	"webshop/internal/pkg/tracing"
	"webshop/internal/pkg/utils"
)

// AppCtx 是传给各服务路由注册函数的运行时上下文。
type AppCtx struct {
	Mux      *http.ServeMux
	Registry *registry.NacosRegistry
}

// AppInfo 包含了启动一个微服务所需的所有特定信息。
type AppInfo struct {
	ServiceName      string
	Port             int
	RegisterHandlers func(appCtx AppCtx) // 每个服务在这里注册自己的 HTTP 路由
	OnShutdown       func(ctx context.Context)
}

// StartService 封装了所有微服务的通用启动和优雅关停逻辑。
func StartService(info AppInfo) {
	// 1. 加载配置、初始化日志
	if err := config.Init(); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(info.ServiceName)
	cfg := config.Get()

	// 2. 初始化 Tracer
	tp, err := tracing.InitTracerProvider(info.ServiceName, cfg.Infra.Jaeger.Endpoint)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize tracer provider")
	}

	// 3. 连接注册中心并注册本实例
	reg, err := registry.NewNacosRegistry(cfg.Infra.Nacos.ServerAddrs, cfg.Infra.Nacos.Namespace, cfg.Infra.Nacos.Group)
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to initialize nacos registry")
	}

	ip, err := utils.GetOutboundIP()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to get outbound IP address")
	}

	if err := reg.Register(info.ServiceName, ip, info.Port); err != nil {
		logger.Logger.Fatal().Err(err).Msg("failed to register service with nacos")
	}

	// 4. 创建并启动 HTTP Server
	mux := http.NewServeMux()
	if info.RegisterHandlers != nil {
		info.RegisterHandlers(AppCtx{Mux: mux, Registry: reg})
	}
	server := &http.Server{Addr: ":" + strconv.Itoa(info.Port), Handler: mux}
	go func() {
		logger.Logger.Info().Str("addr", server.Addr).Msgf("%s listening", info.ServiceName)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal().Err(err).Msgf("could not listen on %s", server.Addr)
		}
	}()

	// 5. 阻塞主 goroutine，直到接收到退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Logger.Info().Msgf("shutting down service %s...", info.ServiceName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 6. 关停流程按后进先出清理
	if err := reg.Deregister(info.ServiceName, ip, info.Port); err != nil {
		logger.Logger.Error().Err(err).Msg("error deregistering from nacos")
	}

	if info.OnShutdown != nil {
		info.OnShutdown(ctx)
	}

	// 关闭 Tracer Provider，确保缓冲中的 trace 都被发送出去
	if err := tp.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down tracer provider")
	}

	if err := server.Shutdown(ctx); err != nil {
		logger.Logger.Error().Err(err).Msg("error shutting down http server")
	}

	logger.Logger.Info().Msgf("service %s gracefully shut down", info.ServiceName)
}
