// internal/service/order/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"webshop/internal/pkg/logger"
	"webshop/internal/service/order/application"
	"webshop/internal/service/order/domain"
)

const serviceName = "order-service"

var placementOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "webshop_order_placements_total",
	Help: "Order placement attempts by terminal outcome.",
}, []string{"outcome"})

// OrderHandler 封装了订单服务的 HTTP 处理器。
type OrderHandler struct {
	service *application.OrderApplicationService
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例。
func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/order", h.orderHandler)
}

func (h *OrderHandler) orderHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.placeOrderHandler(w, r)
	case http.MethodGet:
		h.listOrdersHandler(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *OrderHandler) placeOrderHandler(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "order-service.PlaceOrder")
	defer span.End()

	var req application.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		placementOutcomes.WithLabelValues("validation_error").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	outcome, err := h.service.PlaceOrder(ctx, &req)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("order placement failed")
		h.writePlacementError(w, err)
		return
	}

	if !outcome.Admitted {
		placementOutcomes.WithLabelValues("stock_rejected").Inc()
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":           "one or more items are out of stock",
			"unavailableSkus": outcome.UnavailableSkus,
		})
		return
	}

	placementOutcomes.WithLabelValues("admitted").Inc()
	writeJSON(w, http.StatusCreated, map[string]string{"orderNumber": outcome.OrderNumber})
}

// writePlacementError 把错误分类映射到各自的传输层状态码，
// 让调用方能区分"改请求"、"稍后再试"和"商品无货"。
func (h *OrderHandler) writePlacementError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		placementOutcomes.WithLabelValues("validation_error").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstreamTimeout):
		placementOutcomes.WithLabelValues("upstream_timeout").Inc()
		writeJSON(w, http.StatusGatewayTimeout, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrUpstreamMalformed):
		placementOutcomes.WithLabelValues("upstream_failure").Inc()
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrCancelled):
		placementOutcomes.WithLabelValues("cancelled").Inc()
		// 499 是约定俗成的 client closed request
		writeJSON(w, 499, map[string]string{"error": err.Error()})
	default:
		placementOutcomes.WithLabelValues("persistence_failure").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *OrderHandler) listOrdersHandler(w http.ResponseWriter, r *http.Request) {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "order-service.ListOrders")
	defer span.End()

	views, err := h.service.ListOrders(ctx)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to list orders")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load orders"})
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
