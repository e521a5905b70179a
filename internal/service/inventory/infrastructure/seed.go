// internal/service/inventory/infrastructure/seed.go
package infrastructure

import (
	"context"

	"webshop/internal/pkg/logger"
	"webshop/internal/service/inventory/domain"
)

// seedItems 是启动时装载的固定库存数据，
// 也是订单准入判定集成测试使用的夹具。
var seedItems = []domain.StockItem{
	{SkuCode: "Super_Light_Sugar", Quantity: 100},
	{SkuCode: "Super_Fat_Sugar", Quantity: 0},
}

// SeedStock 以 upsert 方式装载种子库存，可重复执行。
func SeedStock(ctx context.Context, repo domain.StockRepository) error {
	for _, item := range seedItems {
		if err := repo.Upsert(ctx, item); err != nil {
			return err
		}
		logger.Ctx(ctx).Info().Str("sku", item.SkuCode).Int("quantity", item.Quantity).Msg("seeded stock item")
	}
	return nil
}
