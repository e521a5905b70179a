// internal/service/order/application/service.go
package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"webshop/internal/pkg/logger"
	"webshop/internal/service/order/domain"
	"webshop/internal/service/order/domain/port"
)

// OrderApplicationService 编排下单流程：
// 装配 -> 库存查询 -> 准入判定 -> 落库或拒单。
//
// 库存判定是一次时点检查（point-in-time check），不是预占：
// 检查与落库之间库存可能变化，并发订单抢同一 SKU 时存在超卖窗口。
// 上游契约只是一次只读 GET，无法表达预留，这里按原有语义保留并如实记录。
type OrderApplicationService struct {
	orderRepo        domain.OrderRepository
	inventoryService port.InventoryService
	eventProducer    port.OrderEventProducer
	tracer           trace.Tracer

	lookupRetries int
	lookupBackoff time.Duration
}

func NewOrderApplicationService(
	orderRepo domain.OrderRepository,
	inventoryService port.InventoryService,
	eventProducer port.OrderEventProducer,
	tracer trace.Tracer,
	lookupRetries int,
	lookupBackoff time.Duration,
) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo:        orderRepo,
		inventoryService: inventoryService,
		eventProducer:    eventProducer,
		tracer:           tracer,
		lookupRetries:    lookupRetries,
		lookupBackoff:    lookupBackoff,
	}
}

// PlaceOrder 执行一次完整的下单编排。
//
// 返回值约定：库存拒单是业务终态，出现在 PlacementOutcome 中；
// 校验失败、上游失败、落库失败、取消均以 domain 错误分类返回，
// 调用方必须区分处理。任何失败路径都不会留下半个订单。
func (s *OrderApplicationService) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*PlacementOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "order.PlaceOrder")
	defer span.End()

	// Assembling: 纯转换，失败即 ErrValidation，订单号尚未生成
	order, err := domain.NewOrder(req.ToLineItemRequests())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order assembly failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.line_items", len(order.LineItems)),
	)

	// LookingUpInventory: 唯一的阻塞外呼，span 覆盖整个状态，所有出口都会关闭
	skuCodes := order.SkuCodes()
	availability, err := s.lookupInventory(ctx, skuCodes)
	if err != nil {
		if ctx.Err() != nil {
			// 调用方取消或超时：短路为取消，不落库
			return nil, fmt.Errorf("%w: %s", domain.ErrCancelled, ctx.Err())
		}
		logger.Ctx(ctx).Error().Err(err).Str("order", order.OrderNumber).Msg("inventory lookup failed")
		return nil, err
	}

	// Deciding: 全有或全无，应答缺失的 SKU 按无货处理
	decision := domain.Decide(skuCodes, availability)
	if !decision.Admitted {
		span.AddEvent("order rejected by stock decision",
			trace.WithAttributes(attribute.StringSlice("order.unavailable_skus", decision.UnavailableSkus)))
		logger.Ctx(ctx).Info().
			Str("order", order.OrderNumber).
			Strs("unavailable_skus", decision.UnavailableSkus).
			Msg("order rejected: out of stock")
		return &PlacementOutcome{Admitted: false, UnavailableSkus: decision.UnavailableSkus}, nil
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCancelled, ctx.Err())
	}

	// Committing: 事务边界在仓储实现内部，只包住这一次写入
	if err := s.orderRepo.Save(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "order persistence failed")
		logger.Ctx(ctx).Error().Err(err).Str("order", order.OrderNumber).Msg("failed to persist admitted order")
		return nil, fmt.Errorf("%w: %s", domain.ErrPersistence, err)
	}

	// 订单已持久化，事件发布失败不改变下单结果
	if s.eventProducer != nil {
		if err := s.eventProducer.OrderPlaced(ctx, order); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("order", order.OrderNumber).Msg("failed to publish order placed event")
		}
	}

	span.AddEvent("order committed")
	logger.Ctx(ctx).Info().Str("order", order.OrderNumber).Msg("order placed successfully")
	return &PlacementOutcome{Admitted: true, OrderNumber: order.OrderNumber}, nil
}

// lookupInventory 打开覆盖库存查询步骤的 span，并对连接级失败做有限重试。
// 只有 ErrUpstreamUnavailable 会被重试；超时、脏响应和业务拒单从不重试。
func (s *OrderApplicationService) lookupInventory(ctx context.Context, skuCodes []string) ([]domain.SkuAvailability, error) {
	ctx, span := s.tracer.Start(ctx, "InventoryServiceLookup")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("inventory.sku_codes", skuCodes))

	var lastErr error
attempts:
	for attempt := 0; attempt <= s.lookupRetries; attempt++ {
		if attempt > 0 {
			span.AddEvent("retrying inventory lookup", trace.WithAttributes(attribute.Int("attempt", attempt)))
			select {
			case <-ctx.Done():
				// 退避期间被取消：放弃重试，走统一的失败出口
				break attempts
			case <-time.After(time.Duration(attempt) * s.lookupBackoff):
			}
		}

		availability, err := s.inventoryService.CheckStock(ctx, skuCodes)
		if err == nil {
			span.AddEvent("inventory availability received",
				trace.WithAttributes(attribute.Int("inventory.response_size", len(availability))))
			return availability, nil
		}

		lastErr = err
		if !errors.Is(err, domain.ErrUpstreamUnavailable) {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, "inventory lookup failed")
	return nil, lastErr
}

// ListOrders 返回全部已落库订单的响应视图。无过滤、无分页。
func (s *OrderApplicationService) ListOrders(ctx context.Context) ([]OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.ListOrders")
	defer span.End()

	orders, err := s.orderRepo.FindAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load orders")
		return nil, fmt.Errorf("%w: %s", domain.ErrPersistence, err)
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, toOrderView(order))
	}
	return views, nil
}
