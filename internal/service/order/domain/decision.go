// internal/service/order/domain/decision.go
package domain

import "sort"

// SkuAvailability 是库存服务对单个 SKU 的即时答复。
// 只在一次下单流程内有效，本服务不持久化。
type SkuAvailability struct {
	SkuCode string `json:"skuCode"`
	InStock bool   `json:"inStock"`
}

// Decision 是库存准入判定的结果。
type Decision struct {
	Admitted        bool
	UnavailableSkus []string
}

// Decide 按全有或全无策略判定订单准入：
// 每个请求的 SKU 都必须出现在应答中且有货，订单才被准入。
//
// 应答按 SKU 码索引，不按位置——库存侧不保证顺序，
// 也可能返回请求的子集或超集。请求的 SKU 缺席应答时按无货处理（fail closed）。
func Decide(requestedSkus []string, availability []SkuAvailability) Decision {
	inStock := make(map[string]bool, len(availability))
	for _, a := range availability {
		inStock[a.SkuCode] = a.InStock
	}

	unavailableSet := make(map[string]struct{})
	for _, sku := range requestedSkus {
		if !inStock[sku] {
			unavailableSet[sku] = struct{}{}
		}
	}

	if len(unavailableSet) == 0 {
		return Decision{Admitted: true}
	}

	unavailable := make([]string, 0, len(unavailableSet))
	for sku := range unavailableSet {
		unavailable = append(unavailable, sku)
	}
	// 排序保证拒单原因输出稳定
	sort.Strings(unavailable)
	return Decision{Admitted: false, UnavailableSkus: unavailable}
}
