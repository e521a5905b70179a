package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"

	"webshop/internal/service/inventory/application"
	"webshop/internal/service/inventory/domain"
)

type stubStockRepo struct {
	stock map[string]int
}

func (s *stubStockRepo) FindBySkuCodes(ctx context.Context, skuCodes []string) ([]domain.StockItem, error) {
	var items []domain.StockItem
	for _, sku := range skuCodes {
		if qty, ok := s.stock[sku]; ok {
			items = append(items, domain.StockItem{SkuCode: sku, Quantity: qty})
		}
	}
	return items, nil
}

func (s *stubStockRepo) Upsert(ctx context.Context, item domain.StockItem) error {
	s.stock[item.SkuCode] = item.Quantity
	return nil
}

func newTestHandler() *InventoryHandler {
	repo := &stubStockRepo{stock: map[string]int{
		"Super_Light_Sugar": 100,
		"Super_Fat_Sugar":   0,
	}}
	svc := application.NewInventoryApplicationService(repo, otel.Tracer("test"))
	return NewInventoryHandler(svc)
}

func TestCheckStockHandler_RepeatedParams(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/inventory?skuCode=Super_Light_Sugar&skuCode=Super_Fat_Sugar", nil)
	rec := httptest.NewRecorder()
	h.checkStockHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var availability []domain.SkuAvailability
	if err := json.Unmarshal(rec.Body.Bytes(), &availability); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(availability) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(availability))
	}

	byCode := make(map[string]bool)
	for _, a := range availability {
		byCode[a.SkuCode] = a.InStock
	}
	if !byCode["Super_Light_Sugar"] || byCode["Super_Fat_Sugar"] {
		t.Errorf("unexpected availability: %+v", availability)
	}
}

func TestCheckStockHandler_MissingParams(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
	rec := httptest.NewRecorder()
	h.checkStockHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without skuCode params, got %d", rec.Code)
	}
}

func TestCheckStockHandler_MethodNotAllowed(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/inventory", nil)
	rec := httptest.NewRecorder()
	h.checkStockHandler(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestCheckStockHandler_UnknownSkuOmitted(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/inventory?skuCode=Nope", nil)
	rec := httptest.NewRecorder()
	h.checkStockHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var availability []domain.SkuAvailability
	if err := json.Unmarshal(rec.Body.Bytes(), &availability); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(availability) != 0 {
		t.Errorf("unknown sku must be omitted, got %+v", availability)
	}
}
