// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"webshop/internal/pkg/httpclient"
	"webshop/internal/service/order/domain"
)

const (
	// InventoryServiceName 是库存服务在注册中心的逻辑名。
	InventoryServiceName = "inventory-service"
	inventoryLookupPath  = "/api/inventory"
)

// InventoryHTTPAdapter 实现了 port.InventoryService 接口：
// 一次批量 GET 查询，SKU 以重复的 skuCode 查询参数传递。
type InventoryHTTPAdapter struct {
	client  *httpclient.Client
	timeout time.Duration
}

// NewInventoryHTTPAdapter 创建一个新的库存服务适配器。
// timeout 是单次调用的截止时间，作用于整个请求-响应往返。
func NewInventoryHTTPAdapter(client *httpclient.Client, timeout time.Duration) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client, timeout: timeout}
}

// CheckStock 同步查询一组 SKU 的即时可用性。
// 失败时返回 domain 的上游错误分类，调用方据此区分可重试与否。
func (a *InventoryHTTPAdapter) CheckStock(ctx context.Context, skuCodes []string) ([]domain.SkuAvailability, error) {
	params := url.Values{}
	for _, sku := range skuCodes {
		params.Add("skuCode", sku)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var availability []domain.SkuAvailability
	if err := a.client.GetJSON(callCtx, InventoryServiceName, inventoryLookupPath, params, &availability); err != nil {
		return nil, a.classify(ctx, err)
	}
	return availability, nil
}

// classify 将传输层错误映射到领域错误分类。
// parentCtx 用于区分"调用方取消"与"本次调用自身超时"。
func (a *InventoryHTTPAdapter) classify(parentCtx context.Context, err error) error {
	// 调用方的 context 已失效：不是库存侧的问题
	if parentCtx.Err() != nil {
		return errors.Wrap(domain.ErrCancelled, err.Error())
	}

	var statusErr *httpclient.BadStatusError
	if stderrors.As(err, &statusErr) {
		if statusErr.StatusCode >= http.StatusInternalServerError {
			return errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
		}
		// 2xx/4xx 之外的契约外应答一律视为脏响应
		return errors.Wrap(domain.ErrUpstreamMalformed, err.Error())
	}

	var decodeErr *httpclient.DecodeError
	if stderrors.As(err, &decodeErr) {
		return errors.Wrap(domain.ErrUpstreamMalformed, err.Error())
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(domain.ErrUpstreamTimeout, err.Error())
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(domain.ErrUpstreamTimeout, err.Error())
	}

	// 其余情况（连接拒绝、DNS 失败、注册中心没有实例等）按不可达处理
	return errors.Wrap(domain.ErrUpstreamUnavailable, err.Error())
}
