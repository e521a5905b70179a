// internal/service/order/domain/repository.go
package domain

import "context"

// OrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，但由基础设施层实现。
type OrderRepository interface {
	// Save 在一个事务内写入订单及其全部商品行。
	// 一个订单只在准入之后写入一次，之后不再变更。
	Save(ctx context.Context, order *Order) error

	// FindAll 按创建顺序返回全部已落库的订单。
	FindAll(ctx context.Context) ([]*Order, error)
}
