// internal/service/order/application/dto.go
package application

import "webshop/internal/service/order/domain"

// PlaceOrderRequest 是下单用例的输入数据。
type PlaceOrderRequest struct {
	OrderLineItems []LineItemDTO `json:"orderLineItems"`
}

type LineItemDTO struct {
	SkuCode  string  `json:"skuCode"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

// ToLineItemRequests 将传输层 DTO 转换为领域层的商品行请求。
func (r *PlaceOrderRequest) ToLineItemRequests() []domain.LineItemRequest {
	items := make([]domain.LineItemRequest, 0, len(r.OrderLineItems))
	for _, dto := range r.OrderLineItems {
		items = append(items, domain.LineItemRequest{
			SkuCode:  dto.SkuCode,
			Quantity: dto.Quantity,
			Price:    dto.Price,
		})
	}
	return items
}

// PlacementOutcome 是一次下单编排的终态：要么准入并带回订单号，
// 要么因库存不足被拒并带回无货的 SKU 列表。
// 基础设施类失败（校验、上游、落库、取消）以错误形式返回，不会出现在这里。
type PlacementOutcome struct {
	Admitted        bool
	OrderNumber     string
	UnavailableSkus []string
}

// OrderView 是订单读路径的响应视图。
type OrderView struct {
	OrderNumber string        `json:"orderNumber"`
	LineItems   []LineItemDTO `json:"lineItems"`
}

func toOrderView(order *domain.Order) OrderView {
	items := make([]LineItemDTO, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		items = append(items, LineItemDTO{
			SkuCode:  li.SkuCode,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}
	return OrderView{OrderNumber: order.OrderNumber, LineItems: items}
}
