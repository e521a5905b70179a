// internal/service/inventory/interfaces/http_handler.go
package interfaces

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"webshop/internal/pkg/logger"
	"webshop/internal/service/inventory/application"
)

const serviceName = "inventory-service"

// InventoryHandler 封装了库存服务的 HTTP 处理器。
type InventoryHandler struct {
	service *application.InventoryApplicationService
}

func NewInventoryHandler(service *application.InventoryApplicationService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *InventoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/api/inventory", h.checkStockHandler)
}

// checkStockHandler 处理批量库存查询：
// GET /api/inventory?skuCode=A&skuCode=B，SKU 以重复查询参数传递。
func (h *InventoryHandler) checkStockHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "inventory-service.CheckStock")
	defer span.End()

	skuCodes := r.URL.Query()["skuCode"]
	if len(skuCodes) == 0 {
		http.Error(w, "at least one skuCode query parameter is required", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.StringSlice("inventory.sku_codes", skuCodes))

	availability, err := h.service.CheckAvailability(ctx, skuCodes)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Ctx(ctx).Error().Err(err).Msg("stock availability check failed")
		http.Error(w, "stock lookup failed", http.StatusInternalServerError)
		return
	}

	span.AddEvent("stock check completed")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(availability)
}
