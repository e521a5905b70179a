// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import "time"

// OrderModel 是订单表的数据库模型。订单号唯一键，商品行为从表。
type OrderModel struct {
	ID          uint                 `gorm:"primaryKey;autoIncrement"`
	OrderNumber string               `gorm:"type:varchar(36);uniqueIndex;not null"`
	CreatedAt   time.Time            `gorm:"not null"`
	LineItems   []OrderLineItemModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderModel) TableName() string {
	return "t_orders"
}

// OrderLineItemModel 是订单商品行的数据库模型，没有独立生命周期。
type OrderLineItemModel struct {
	ID       uint    `gorm:"primaryKey;autoIncrement"`
	OrderID  uint    `gorm:"index;not null"`
	SkuCode  string  `gorm:"type:varchar(64);not null"`
	Quantity int     `gorm:"not null"`
	Price    float64 `gorm:"not null"`
}

func (OrderLineItemModel) TableName() string {
	return "t_order_line_items"
}
