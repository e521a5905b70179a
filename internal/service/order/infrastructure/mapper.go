// internal/service/order/infrastructure/mapper.go
package infrastructure

import "webshop/internal/service/order/domain"

// ToOrderModel 将领域订单转换为数据库模型。
func ToOrderModel(order *domain.Order) *OrderModel {
	items := make([]OrderLineItemModel, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		items = append(items, OrderLineItemModel{
			SkuCode:  li.SkuCode,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}
	return &OrderModel{
		OrderNumber: order.OrderNumber,
		CreatedAt:   order.CreatedAt,
		LineItems:   items,
	}
}

// ToDomainOrder 将数据库模型转换回领域订单。
func ToDomainOrder(model *OrderModel) *domain.Order {
	items := make([]domain.OrderLineItem, 0, len(model.LineItems))
	for _, li := range model.LineItems {
		items = append(items, domain.OrderLineItem{
			SkuCode:  li.SkuCode,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}
	return &domain.Order{
		OrderNumber: model.OrderNumber,
		LineItems:   items,
		CreatedAt:   model.CreatedAt,
	}
}
