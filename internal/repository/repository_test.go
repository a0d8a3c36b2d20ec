// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/models"
	"github.com/tomtom215/basketrec/internal/recommend"
)

type mockOrderStore struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (m *mockOrderStore) QueryOrders(ctx context.Context, statuses []string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []models.Order{{ID: "o1"}}, nil
}

func (m *mockOrderStore) QueryOrdersByUser(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return []models.Order{{ID: "o1", UserID: userID}}, nil
}

type mockProductStore struct {
	mu       sync.Mutex
	products map[string]*models.Product
	err      error
	gets     int
}

func (m *mockProductStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, database.ErrProductNotFound
	}
	return p, nil
}

func (m *mockProductStore) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []models.Product{{ID: "new"}}, nil
}

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Hour,
		FailureThreshold: 2,
	}
}

func TestOrders_PassThrough(t *testing.T) {
	store := &mockOrderStore{}
	orders := NewOrders(store, testBreakerConfig(), zerolog.Nop())

	got, err := orders.QueryOrdersByUser(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("QueryOrdersByUser() error = %v", err)
	}
	if len(got) != 1 || got[0].UserID != "u1" {
		t.Errorf("QueryOrdersByUser() = %+v", got)
	}
	if _, err := orders.QueryOrders(context.Background(), nil); err != nil {
		t.Fatalf("QueryOrders() error = %v", err)
	}
}

func TestOrders_FailuresWrapAndTrip(t *testing.T) {
	dbErr := errors.New("connection refused")
	store := &mockOrderStore{err: dbErr}
	orders := NewOrders(store, testBreakerConfig(), zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := orders.QueryOrdersByUser(ctx, "u1", 5)
		if !errors.Is(err, recommend.ErrUpstreamLookup) {
			t.Fatalf("call %d: error = %v, want ErrUpstreamLookup", i, err)
		}
		if !errors.Is(err, dbErr) {
			t.Fatalf("call %d: error = %v, want wrapped cause", i, err)
		}
	}

	before := testutil.ToFloat64(metrics.CircuitBreakerRejections.WithLabelValues("orders-history"))
	_, err := orders.QueryOrdersByUser(ctx, "u1", 5)
	if !errors.Is(err, recommend.ErrUpstreamLookup) {
		t.Fatalf("open breaker error = %v, want ErrUpstreamLookup", err)
	}
	if store.calls != 2 {
		t.Errorf("store calls = %d, want 2 (third rejected)", store.calls)
	}
	after := testutil.ToFloat64(metrics.CircuitBreakerRejections.WithLabelValues("orders-history"))
	if after != before+1 {
		t.Errorf("rejections = %v, want %v", after, before+1)
	}

	states := orders.BreakerStates()
	if states["orders-history"] != "open" {
		t.Errorf("orders-history state = %q, want open", states["orders-history"])
	}
	// The scan breaker is independent.
	if states["orders-scan"] != "closed" {
		t.Errorf("orders-scan state = %q, want closed", states["orders-scan"])
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("orders-history")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
}

func TestOrders_CanceledDoesNotTrip(t *testing.T) {
	store := &mockOrderStore{err: context.Canceled}
	orders := NewOrders(store, testBreakerConfig(), zerolog.Nop())

	for i := 0; i < 5; i++ {
		if _, err := orders.QueryOrders(context.Background(), nil); err == nil {
			t.Fatal("expected error")
		}
	}
	if store.calls != 5 {
		t.Errorf("store calls = %d, want 5", store.calls)
	}
	if s := orders.BreakerStates()["orders-scan"]; s != "closed" {
		t.Errorf("orders-scan state = %q, want closed", s)
	}
}

func TestProducts_GetProduct(t *testing.T) {
	store := &mockProductStore{products: map[string]*models.Product{
		"p1": {ID: "p1", Name: "Milk"},
	}}
	products := NewProducts(store, testBreakerConfig(), ProductCacheConfig{Size: 10, TTL: time.Minute}, zerolog.Nop())
	ctx := context.Background()

	t.Run("cached after first lookup", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			p, err := products.GetProduct(ctx, "p1")
			if err != nil {
				t.Fatalf("GetProduct() error = %v", err)
			}
			if p.Name != "Milk" {
				t.Errorf("GetProduct() = %+v", p)
			}
		}
		if store.gets != 1 {
			t.Errorf("store gets = %d, want 1", store.gets)
		}
	})

	t.Run("not found is not upstream failure", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := products.GetProduct(ctx, "missing")
			if !errors.Is(err, database.ErrProductNotFound) {
				t.Fatalf("GetProduct() error = %v, want ErrProductNotFound", err)
			}
			if errors.Is(err, recommend.ErrUpstreamLookup) {
				t.Fatalf("GetProduct() error = %v, must not be ErrUpstreamLookup", err)
			}
		}
		if s := products.BreakerStates()["products-get"]; s != "closed" {
			t.Errorf("products-get state = %q, want closed", s)
		}
	})

	t.Run("invalidate", func(t *testing.T) {
		products.Invalidate()
		before := store.gets
		if _, err := products.GetProduct(ctx, "p1"); err != nil {
			t.Fatalf("GetProduct() error = %v", err)
		}
		if store.gets != before+1 {
			t.Errorf("store gets = %d, want %d", store.gets, before+1)
		}
	})
}

func TestProducts_UpstreamFailure(t *testing.T) {
	store := &mockProductStore{err: errors.New("timeout")}
	products := NewProducts(store, testBreakerConfig(), ProductCacheConfig{}, zerolog.Nop())

	_, err := products.GetProduct(context.Background(), "p1")
	if !errors.Is(err, recommend.ErrUpstreamLookup) {
		t.Errorf("GetProduct() error = %v, want ErrUpstreamLookup", err)
	}
	_, err = products.NewArrivals(context.Background(), 5)
	if !errors.Is(err, recommend.ErrUpstreamLookup) {
		t.Errorf("NewArrivals() error = %v, want ErrUpstreamLookup", err)
	}
}
