// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"gorm.io/gorm"

	"webshop/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现。
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例并确保表结构存在。
func NewGormOrderRepository(db *gorm.DB) (*GormOrderRepository, error) {
	if err := db.AutoMigrate(&OrderModel{}, &OrderLineItemModel{}); err != nil {
		return nil, err
	}
	return &GormOrderRepository{db: db}, nil
}

// Save 在一个显式事务内写入订单头和全部商品行。
// 事务只包住这一次提交，不跨越库存检查；任何失败整体回滚，不留半个订单。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := ToOrderModel(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(model).Error
	})
}

// FindAll 按创建顺序返回全部订单，预加载商品行。
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]*domain.Order, error) {
	var models []OrderModel
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Order("id asc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i]))
	}
	return orders, nil
}
