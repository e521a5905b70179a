package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"webshop/internal/pkg/httpclient"
	"webshop/internal/pkg/registry"
	"webshop/internal/service/order/domain"
)

func newAdapterForServer(ts *httptest.Server, timeout time.Duration) *InventoryHTTPAdapter {
	addr := strings.TrimPrefix(ts.URL, "http://")
	resolver := registry.StaticResolver{InventoryServiceName: addr}
	client := httpclient.NewClient(otel.Tracer("test"), resolver)
	return NewInventoryHTTPAdapter(client, timeout)
}

func TestCheckStock_RepeatedSkuCodeParams(t *testing.T) {
	var gotQuery url.Values
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode([]domain.SkuAvailability{
			{SkuCode: "A", InStock: true},
			{SkuCode: "B", InStock: false},
		})
	}))
	defer ts.Close()

	a := newAdapterForServer(ts, time.Second)
	availability, err := a.CheckStock(context.Background(), []string{"A", "B"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"A", "B"}; len(gotQuery["skuCode"]) != 2 ||
		gotQuery["skuCode"][0] != want[0] || gotQuery["skuCode"][1] != want[1] {
		t.Errorf("expected repeated skuCode params %v, got %v", want, gotQuery["skuCode"])
	}
	if len(availability) != 2 {
		t.Fatalf("expected 2 availability entries, got %d", len(availability))
	}
	if !availability[0].InStock || availability[1].InStock {
		t.Errorf("availability decoded incorrectly: %+v", availability)
	}
}

func TestCheckStock_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	a := newAdapterForServer(ts, 50*time.Millisecond)
	start := time.Now()
	_, err := a.CheckStock(context.Background(), []string{"A"})
	if !errors.Is(err, domain.ErrUpstreamTimeout) {
		t.Fatalf("expected ErrUpstreamTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout not enforced, call took %v", elapsed)
	}
}

func TestCheckStock_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	a := newAdapterForServer(ts, time.Second)
	_, err := a.CheckStock(context.Background(), []string{"A"})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable for 500, got %v", err)
	}
}

func TestCheckStock_MalformedResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"`))
	}))
	defer ts.Close()

	a := newAdapterForServer(ts, time.Second)
	_, err := a.CheckStock(context.Background(), []string{"A"})
	if !errors.Is(err, domain.ErrUpstreamMalformed) {
		t.Fatalf("expected ErrUpstreamMalformed, got %v", err)
	}
}

func TestCheckStock_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // 立即关掉，制造连接拒绝

	a := newAdapterForServer(ts, time.Second)
	_, err := a.CheckStock(context.Background(), []string{"A"})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable on connection failure, got %v", err)
	}
}

func TestCheckStock_UnresolvableService(t *testing.T) {
	client := httpclient.NewClient(otel.Tracer("test"), registry.StaticResolver{})
	a := NewInventoryHTTPAdapter(client, time.Second)

	_, err := a.CheckStock(context.Background(), []string{"A"})
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable when no instance resolves, got %v", err)
	}
}

func TestCheckStock_CallerCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()

	a := newAdapterForServer(ts, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := a.CheckStock(ctx, []string{"A"})
	if !errors.Is(err, domain.ErrCancelled) {
		t.Fatalf("expected ErrCancelled when the caller cancels, got %v", err)
	}
}
