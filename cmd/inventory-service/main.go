// cmd/inventory-service/main.go
package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"webshop/internal/pkg/bootstrap"
	"webshop/internal/pkg/config"
	"webshop/internal/pkg/logger"
	"webshop/internal/pkg/redis"
	"webshop/internal/service/inventory/application"
	"webshop/internal/service/inventory/domain"
	"webshop/internal/service/inventory/infrastructure"
	"webshop/internal/service/inventory/interfaces"
)

const (
	serviceName = "inventory-service"
	servicePort = 8082

	stockCacheTTL = 2 * time.Second
)

// main 是库存服务的组装根。
func main() {
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			cfg := config.Get()
			tracer := otel.Tracer(serviceName)

			db, err := gorm.Open(mysql.Open(cfg.Infra.Mysql.DSN), &gorm.Config{})
			if err != nil {
				logger.Logger.Fatal().Err(err).Msg("failed to connect to mysql")
			}
			gormRepo, err := infrastructure.NewGormStockRepository(db)
			if err != nil {
				logger.Logger.Fatal().Err(err).Msg("failed to initialize stock repository")
			}

			// Redis 不可用时直接降级为纯数据库仓储
			var stockRepo domain.StockRepository = gormRepo
			if redisClient, err := redis.NewClient(cfg.Infra.Redis.Addr); err != nil {
				logger.Logger.Warn().Err(err).Msg("redis unavailable, running without stock cache")
			} else {
				stockRepo = infrastructure.NewCachedStockRepository(gormRepo, redisClient, stockCacheTTL)
			}

			if err := infrastructure.SeedStock(context.Background(), stockRepo); err != nil {
				logger.Logger.Fatal().Err(err).Msg("failed to seed stock data")
			}

			inventoryService := application.NewInventoryApplicationService(stockRepo, tracer)
			handler := interfaces.NewInventoryHandler(inventoryService)
			handler.RegisterRoutes(appCtx.Mux)
		},
	})
}
