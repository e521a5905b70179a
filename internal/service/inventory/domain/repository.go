// internal/service/inventory/domain/repository.go
package domain

import "context"

// StockRepository 定义了库存记录的持久化接口。
type StockRepository interface {
	// FindBySkuCodes 按 SKU 批量查询库存记录。
	// 只返回存在的记录，未知 SKU 直接缺席结果。
	FindBySkuCodes(ctx context.Context, skuCodes []string) ([]StockItem, error)

	// Upsert 写入或更新一条库存记录（种子数据、运维补货用）。
	Upsert(ctx context.Context, item StockItem) error
}
