// internal/service/inventory/domain/stock.go
package domain

// StockItem 是一条库存记录：SKU 唯一标识一个商品变体。
type StockItem struct {
	SkuCode  string
	Quantity int
}

// InStock 判断该 SKU 当前是否有货。
func (s StockItem) InStock() bool {
	return s.Quantity > 0
}

// SkuAvailability 是对外暴露的单个 SKU 可用性视图。
type SkuAvailability struct {
	SkuCode string `json:"skuCode"`
	InStock bool   `json:"inStock"`
}
