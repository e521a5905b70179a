// internal/service/inventory/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"webshop/internal/service/inventory/domain"
)

// StockItemModel 是库存表的数据库模型。
type StockItemModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	SkuCode  string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Quantity int    `gorm:"not null"`
}

func (StockItemModel) TableName() string {
	return "t_inventory"
}

// GormStockRepository 是 StockRepository 的 GORM 实现。
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository 创建仓储实例并确保表结构存在。
func NewGormStockRepository(db *gorm.DB) (*GormStockRepository, error) {
	if err := db.AutoMigrate(&StockItemModel{}); err != nil {
		return nil, err
	}
	return &GormStockRepository{db: db}, nil
}

func (r *GormStockRepository) FindBySkuCodes(ctx context.Context, skuCodes []string) ([]domain.StockItem, error) {
	if len(skuCodes) == 0 {
		return nil, nil
	}
	var models []StockItemModel
	err := r.db.WithContext(ctx).
		Where("sku_code IN ?", skuCodes).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	items := make([]domain.StockItem, 0, len(models))
	for _, m := range models {
		items = append(items, domain.StockItem{SkuCode: m.SkuCode, Quantity: m.Quantity})
	}
	return items, nil
}

// Upsert 按 SKU 冲突更新数量，用于种子数据和补货。
func (r *GormStockRepository) Upsert(ctx context.Context, item domain.StockItem) error {
	model := StockItemModel{SkuCode: item.SkuCode, Quantity: item.Quantity}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sku_code"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity"}),
		}).
		Create(&model).Error
}
