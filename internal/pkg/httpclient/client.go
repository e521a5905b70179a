// internal/pkg/httpclient/client.go
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"webshop/internal/pkg/registry"
)

// BadStatusError 表示下游返回了非 2xx 状态码。
type BadStatusError struct {
	Service    string
	StatusCode int
}

func (e *BadStatusError) Error() string {
	return fmt.Sprintf("service %s returned status %d", e.Service, e.StatusCode)
}

// DecodeError 表示下游响应体无法按预期结构反序列化。
type DecodeError struct {
	Service string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response from %s: %v", e.Service, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client 是一个可追踪的、经注册中心寻址的 HTTP 客户端。
type Client struct {
	Tracer     trace.Tracer
	Resolver   registry.Resolver
	HTTPClient *http.Client
}

// NewClient 创建一个新的客户端实例。
// http.Client 不设置 Timeout 字段，超时完全受控于每次请求传入的 context。
func NewClient(tracer trace.Tracer, resolver registry.Resolver) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		Resolver:   resolver,
		HTTPClient: httpClient,
	}
}

// GetJSON 对逻辑服务名 serviceName 的 path 发起一次 GET 调用，
// 并将响应体反序列化到 out。链路上下文通过请求头向下游传播。
func (c *Client) GetJSON(ctx context.Context, serviceName, path string, params url.Values, out interface{}) error {
	addr, err := c.Resolver.Resolve(serviceName)
	if err != nil {
		return err
	}

	ctx, span := c.Tracer.Start(ctx, fmt.Sprintf("call-%s", serviceName), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	downstreamURL := url.URL{
		Scheme:   "http",
		Host:     addr,
		Path:     path,
		RawQuery: params.Encode(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downstreamURL.String(), nil)
	if err != nil {
		span.RecordError(err)
		return err
	}

	span.SetAttributes(
		attribute.String("http.url", downstreamURL.String()),
		attribute.String("http.method", http.MethodGet),
		attribute.String("peer.service", serviceName),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := &BadStatusError{Service: serviceName, StatusCode: resp.StatusCode}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		decodeErr := &DecodeError{Service: serviceName, Err: err}
		span.RecordError(decodeErr)
		span.SetStatus(codes.Error, "failed to decode response body")
		return decodeErr
	}
	return nil
}
