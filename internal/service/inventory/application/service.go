// internal/service/inventory/application/service.go
package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"webshop/internal/service/inventory/domain"
)

// InventoryApplicationService 处理批量库存查询用例。
type InventoryApplicationService struct {
	stockRepo domain.StockRepository
	tracer    trace.Tracer
}

func NewInventoryApplicationService(stockRepo domain.StockRepository, tracer trace.Tracer) *InventoryApplicationService {
	return &InventoryApplicationService{stockRepo: stockRepo, tracer: tracer}
}

// CheckAvailability 返回每个已知 SKU 的即时可用性。
// 请求中的重复 SKU 被容忍并去重；未知 SKU 缺席应答，由订单侧按无货兜底。
// 结果是一次时点快照，不做任何预占。
func (s *InventoryApplicationService) CheckAvailability(ctx context.Context, skuCodes []string) ([]domain.SkuAvailability, error) {
	ctx, span := s.tracer.Start(ctx, "inventory.CheckAvailability")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("inventory.sku_codes", skuCodes))

	seen := make(map[string]struct{}, len(skuCodes))
	distinct := make([]string, 0, len(skuCodes))
	for _, sku := range skuCodes {
		if _, ok := seen[sku]; ok {
			continue
		}
		seen[sku] = struct{}{}
		distinct = append(distinct, sku)
	}

	items, err := s.stockRepo.FindBySkuCodes(ctx, distinct)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "stock lookup failed")
		return nil, err
	}

	availability := make([]domain.SkuAvailability, 0, len(items))
	for _, item := range items {
		availability = append(availability, domain.SkuAvailability{
			SkuCode: item.SkuCode,
			InStock: item.InStock(),
		})
	}
	span.SetAttributes(attribute.Int("inventory.response_size", len(availability)))
	return availability, nil
}
