// internal/service/order/domain/port/inventory.go
package port

import (
	"context"

	"webshop/internal/service/order/domain"
)

// InventoryService 是库存子系统的出站端口。
type InventoryService interface {
	// CheckStock 对一组 SKU 发起一次批量库存查询。
	// 应答顺序与请求无关，也可能不覆盖全部请求的 SKU；由判定逻辑兜底。
	// 失败时返回 domain 错误分类中的上游错误之一。
	CheckStock(ctx context.Context, skuCodes []string) ([]domain.SkuAvailability, error)
}
