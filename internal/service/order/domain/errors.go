// internal/service/order/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// 下单流程的错误分类。调用方用 errors.Is / errors.As 区分：
// 校验失败是客户端问题，上游失败意味着稍后可重试，库存拒绝则是明确的业务结论。
var (
	// ErrValidation 请求本身不合法，订单从未被装配。
	ErrValidation = errors.New("invalid order request")

	// ErrUpstreamUnavailable 库存服务连接失败。
	ErrUpstreamUnavailable = errors.New("inventory service unavailable")

	// ErrUpstreamTimeout 库存查询超过配置的截止时间。
	ErrUpstreamTimeout = errors.New("inventory lookup timed out")

	// ErrUpstreamMalformed 库存服务返回了无法解析的响应。
	ErrUpstreamMalformed = errors.New("inventory service returned malformed response")

	// ErrPersistence 订单通过准入后写库失败，不得上报为成功。
	ErrPersistence = errors.New("order persistence failed")

	// ErrCancelled 调用方取消或截止时间到期，流程短路且不落库。
	ErrCancelled = errors.New("order placement cancelled")
)

// NewValidationError 构造一个归类于 ErrValidation 的错误。
func NewValidationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// StockRejectionError 是业务层面的拒单：至少一个 SKU 无货或库存侧未知。
// 不会被自动重试，需原样呈现给用户。
type StockRejectionError struct {
	UnavailableSkus []string
}

func (e *StockRejectionError) Error() string {
	return fmt.Sprintf("out of stock: %s", strings.Join(e.UnavailableSkus, ", "))
}
