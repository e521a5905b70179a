// internal/service/order/domain/port/notification.go
package port

import (
	"context"

	"webshop/internal/service/order/domain"
)

// OrderEventProducer 在订单落库成功后对外发布事件。
// 发布是尽力而为：订单此时已持久化，发布失败只记日志，不影响下单结果。
type OrderEventProducer interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
}
