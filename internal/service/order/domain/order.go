// internal/service/order/domain/order.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// LineItemRequest 是下单请求中的一条商品行，尚未绑定到任何订单。
type LineItemRequest struct {
	SkuCode  string
	Quantity int
	Price    float64
}

// OrderLineItem 是订单内的商品行，生命周期完全归属于所在的 Order。
type OrderLineItem struct {
	SkuCode  string
	Quantity int
	Price    float64
}

// Order 是订单聚合的根实体。
// OrderNumber 在装配时生成，全局唯一，创建后不可变。
type Order struct {
	OrderNumber string
	LineItems   []OrderLineItem
	CreatedAt   time.Time
}

// NewOrder 是订单装配的工厂函数：校验请求、生成订单号、逐行映射商品行。
// 纯函数，不做任何 I/O；校验失败返回 ErrValidation。
func NewOrder(items []LineItemRequest) (*Order, error) {
	if len(items) == 0 {
		return nil, NewValidationError("order must contain at least one line item")
	}

	lineItems := make([]OrderLineItem, 0, len(items))
	for i, item := range items {
		if item.SkuCode == "" {
			return nil, NewValidationError("line item %d has empty sku code", i)
		}
		if item.Quantity <= 0 {
			return nil, NewValidationError("line item %d (%s) has non-positive quantity %d", i, item.SkuCode, item.Quantity)
		}
		lineItems = append(lineItems, OrderLineItem{
			SkuCode:  item.SkuCode,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}

	return &Order{
		OrderNumber: uuid.New().String(),
		LineItems:   lineItems,
		CreatedAt:   time.Now(),
	}, nil
}

// SkuCodes 返回订单涉及的 SKU 列表，保持商品行顺序，不去重。
// 去重是调用方（库存查询）的责任，下游也容忍重复。
func (o *Order) SkuCodes() []string {
	codes := make([]string, 0, len(o.LineItems))
	for _, item := range o.LineItems {
		codes = append(codes, item.SkuCode)
	}
	return codes
}
