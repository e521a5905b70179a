package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"webshop/internal/service/order/domain"
)

// Mock OrderRepository
type mockOrderRepo struct {
	mu      sync.Mutex
	saved   []*domain.Order
	saveErr error
}

func (m *mockOrderRepo) Save(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, order)
	return nil
}

func (m *mockOrderRepo) FindAll(ctx context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Order(nil), m.saved...), nil
}

func (m *mockOrderRepo) savedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saved)
}

// Mock InventoryService
type mockInventory struct {
	mu        sync.Mutex
	calls     int
	responses []inventoryResponse
}

type inventoryResponse struct {
	availability []domain.SkuAvailability
	err          error
}

func (m *mockInventory) CheckStock(ctx context.Context, skuCodes []string) ([]domain.SkuAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(domain.ErrCancelled, err)
	}
	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	m.calls++
	return resp.availability, resp.err
}

func (m *mockInventory) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Mock OrderEventProducer
type mockEventProducer struct {
	mu        sync.Mutex
	published []string
	err       error
}

func (m *mockEventProducer) OrderPlaced(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, order.OrderNumber)
	return nil
}

func newService(repo *mockOrderRepo, inv *mockInventory, events *mockEventProducer, retries int) *OrderApplicationService {
	return NewOrderApplicationService(repo, inv, events, otel.Tracer("test"), retries, time.Millisecond)
}

func allInStock(skus ...string) []domain.SkuAvailability {
	avail := make([]domain.SkuAvailability, 0, len(skus))
	for _, sku := range skus {
		avail = append(avail, domain.SkuAvailability{SkuCode: sku, InStock: true})
	}
	return avail
}

func TestPlaceOrder_Admitted(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{availability: allInStock("A")}}}
	events := &mockEventProducer{}
	svc := newService(repo, inv, events, 0)

	outcome, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Admitted {
		t.Fatalf("expected admitted, got %+v", outcome)
	}
	if outcome.OrderNumber == "" {
		t.Error("expected an order number on admission")
	}
	if repo.savedCount() != 1 {
		t.Errorf("expected exactly one persisted order, got %d", repo.savedCount())
	}
	if repo.saved[0].LineItems[0].Quantity != 2 {
		t.Errorf("persisted quantity mismatch: %+v", repo.saved[0].LineItems[0])
	}
	if len(events.published) != 1 || events.published[0] != outcome.OrderNumber {
		t.Errorf("expected one order placed event for %s, got %v", outcome.OrderNumber, events.published)
	}
}

func TestPlaceOrder_StockRejection(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{
		availability: []domain.SkuAvailability{
			{SkuCode: "A", InStock: true},
			{SkuCode: "B", InStock: false},
		},
	}}}
	svc := newService(repo, inv, &mockEventProducer{}, 0)

	outcome, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}, {SkuCode: "B", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Admitted {
		t.Fatal("expected rejection")
	}
	if len(outcome.UnavailableSkus) != 1 || outcome.UnavailableSkus[0] != "B" {
		t.Errorf("expected unavailable [B], got %v", outcome.UnavailableSkus)
	}
	if repo.savedCount() != 0 {
		t.Errorf("rejected order must not be persisted, found %d", repo.savedCount())
	}
}

func TestPlaceOrder_MissingSkuRejected(t *testing.T) {
	repo := &mockOrderRepo{}
	// 应答完全不包含 B
	inv := &mockInventory{responses: []inventoryResponse{{availability: allInStock("A")}}}
	svc := newService(repo, inv, &mockEventProducer{}, 0)

	outcome, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}, {SkuCode: "B", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Admitted {
		t.Fatal("expected rejection when availability omits a requested sku")
	}
	if repo.savedCount() != 0 {
		t.Errorf("expected no persisted orders, got %d", repo.savedCount())
	}
}

func TestPlaceOrder_ValidationError(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{availability: nil}}}
	svc := newService(repo, inv, &mockEventProducer{}, 0)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if inv.callCount() != 0 {
		t.Error("inventory must not be queried for an invalid request")
	}
	if repo.savedCount() != 0 {
		t.Error("invalid request must not persist anything")
	}
}

func TestPlaceOrder_UpstreamUnavailableRetriedThenFails(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{err: domain.ErrUpstreamUnavailable}}}
	svc := newService(repo, inv, &mockEventProducer{}, 2)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if inv.callCount() != 3 {
		t.Errorf("expected 1 call + 2 retries, got %d calls", inv.callCount())
	}
	if repo.savedCount() != 0 {
		t.Error("upstream failure must not persist anything")
	}
}

func TestPlaceOrder_UpstreamUnavailableRetriedThenSucceeds(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{
		{err: domain.ErrUpstreamUnavailable},
		{availability: allInStock("A")},
	}}
	svc := newService(repo, inv, &mockEventProducer{}, 2)

	outcome, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Admitted {
		t.Fatalf("expected admission after retry, got %+v", outcome)
	}
	if inv.callCount() != 2 {
		t.Errorf("expected 2 calls, got %d", inv.callCount())
	}
}

func TestPlaceOrder_UpstreamTimeoutNotRetried(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{err: domain.ErrUpstreamTimeout}}}
	svc := newService(repo, inv, &mockEventProducer{}, 2)

	start := time.Now()
	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
	if inv.callCount() != 1 {
		t.Errorf("timeout must not be retried, got %d calls", inv.callCount())
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout path took too long: %v", elapsed)
	}
	if repo.savedCount() != 0 {
		t.Error("timed out placement must not persist anything")
	}
}

func TestPlaceOrder_CancelledContext(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{availability: allInStock("A")}}}
	svc := newService(repo, inv, &mockEventProducer{}, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if repo.savedCount() != 0 {
		t.Error("cancelled placement must not persist anything")
	}
}

func TestPlaceOrder_PersistenceFailure(t *testing.T) {
	repo := &mockOrderRepo{saveErr: errors.New("connection lost")}
	inv := &mockInventory{responses: []inventoryResponse{{availability: allInStock("A")}}}
	events := &mockEventProducer{}
	svc := newService(repo, inv, events, 0)

	_, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(events.published) != 0 {
		t.Error("no event may be published when the commit failed")
	}
}

func TestPlaceOrder_EventPublishFailureDoesNotFailPlacement(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{availability: allInStock("A")}}}
	events := &mockEventProducer{err: errors.New("broker down")}
	svc := newService(repo, inv, events, 0)

	outcome, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Admitted {
		t.Fatal("placement must succeed even if the event publish fails")
	}
	if repo.savedCount() != 1 {
		t.Errorf("expected the order to remain persisted, got %d", repo.savedCount())
	}
}

func TestPlaceOrder_PriceSurvivesRoundTrip(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{availability: allInStock("A")}}}
	svc := newService(repo, inv, &mockEventProducer{}, 0)

	outcome, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 2, Price: 9.99}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Admitted {
		t.Fatalf("expected admission, got %+v", outcome)
	}

	views, err := svc.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 || len(views[0].LineItems) != 1 {
		t.Fatalf("expected one order with one line item, got %+v", views)
	}
	if got := views[0].LineItems[0].Price; got != 9.99 {
		t.Errorf("expected listed price 9.99, got %v", got)
	}
}

// cancellingInventory 在第一次调用时取消调用方的 context，
// 使编排器在重试退避期间观察到取消。
type cancellingInventory struct {
	cancel context.CancelFunc
}

func (c *cancellingInventory) CheckStock(ctx context.Context, skuCodes []string) ([]domain.SkuAvailability, error) {
	c.cancel()
	return nil, domain.ErrUpstreamUnavailable
}

func TestPlaceOrder_LookupSpanRecordsErrorWhenCancelledDuringBackoff(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &mockOrderRepo{}
	svc := NewOrderApplicationService(repo, &cancellingInventory{cancel: cancel}, &mockEventProducer{},
		tp.Tracer("test"), 2, 50*time.Millisecond)

	_, err := svc.PlaceOrder(ctx, &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
	})
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if repo.savedCount() != 0 {
		t.Error("cancelled placement must not persist anything")
	}

	var found bool
	for _, span := range exporter.GetSpans() {
		if span.Name != "InventoryServiceLookup" {
			continue
		}
		found = true
		if span.Status.Code != codes.Error {
			t.Errorf("expected lookup span status Error, got %v", span.Status.Code)
		}
		if len(span.Events) == 0 {
			t.Error("expected the lookup failure to be recorded on the span")
		}
	}
	if !found {
		t.Fatal("InventoryServiceLookup span was not exported")
	}
}

func TestListOrders_Idempotent(t *testing.T) {
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{availability: allInStock("A")}}}
	svc := newService(repo, inv, &mockEventProducer{}, 0)

	if _, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
		OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one order in both listings, got %d and %d", len(first), len(second))
	}
	if first[0].OrderNumber != second[0].OrderNumber {
		t.Error("listing twice with no intervening writes must yield identical results")
	}
}

func TestPlaceOrder_ConcurrentPlacementsUniqueOrderNumbers(t *testing.T) {
	const n = 50
	repo := &mockOrderRepo{}
	inv := &mockInventory{responses: []inventoryResponse{{availability: allInStock("A")}}}
	svc := newService(repo, inv, &mockEventProducer{}, 0)

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := svc.PlaceOrder(context.Background(), &PlaceOrderRequest{
				OrderLineItems: []LineItemDTO{{SkuCode: "A", Quantity: 1}},
			})
			if err != nil || !outcome.Admitted {
				t.Errorf("placement failed: %v %+v", err, outcome)
				return
			}
			numbers <- outcome.OrderNumber
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]struct{}, n)
	for number := range numbers {
		if _, dup := seen[number]; dup {
			t.Fatalf("duplicate order number across concurrent placements: %s", number)
		}
		seen[number] = struct{}{}
	}
	if len(seen) != n {
		t.Errorf("expected %d distinct order numbers, got %d", n, len(seen))
	}
}
