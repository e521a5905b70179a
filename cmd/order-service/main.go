// cmd/order-service/main.go
package main

import (
	"context"

	"go.opentelemetry.io/otel"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"webshop/internal/pkg/bootstrap"
	"webshop/internal/pkg/config"
	"webshop/internal/pkg/httpclient"
	"webshop/internal/pkg/logger"
	"webshop/internal/pkg/mq"
	"webshop/internal/service/order/application"
	"webshop/internal/service/order/infrastructure"
	"webshop/internal/service/order/infrastructure/adapter"
	"webshop/internal/service/order/interfaces"
)

const (
	serviceName = "order-service"
	servicePort = 8081
)

// main 是应用的组装根 (Composition Root)：创建并组装所有依赖项，然后启动。
func main() {
	var producer *adapter.OrderKafkaProducer

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
			orderRepo, err := infrastructure.NewGormOrderRepository(db)
			if err != nil {
				logger.Logger.Fatal().Err(err).Msg("failed to initialize order repository")
			}

			client := httpclient.NewClient(tracer, appCtx.Registry)
			inventoryService := adapter.NewInventoryHTTPAdapter(client, cfg.App.InventoryTimeout)

			writer := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderEventsTopic)
			producer = adapter.NewOrderKafkaProducer(writer)

			orderService := application.NewOrderApplicationService(
				orderRepo,
				inventoryService,
				producer,
				tracer,
				cfg.App.InventoryRetries,
				cfg.App.InventoryRetryBackoff,
			)

			handler := interfaces.NewOrderHandler(orderService)
			handler.RegisterRoutes(appCtx.Mux)
		},
		OnShutdown: func(ctx context.Context) {
			if producer != nil {
				if err := producer.Close(); err != nil {
					logger.Logger.Error().Err(err).Msg("error closing kafka producer")
				}
			}
		},
	})
}
