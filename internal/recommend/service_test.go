// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package recommend

import (
	"context"
	"errors"
	"math"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/models"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

func makeOrder(id string, products ...string) models.Order {
	items := make([]models.OrderItem, len(products))
	for i, p := range products {
		items[i] = models.OrderItem{ProductID: p, Name: "Product " + p, Quantity: 1}
	}
	return models.Order{ID: id, UserID: "u1", Status: models.OrderStatusDelivered, Items: items}
}

// scenarioOrders: O1={A,B}, O2={A,C}, O3={A,B,C}.
func scenarioOrders() []models.Order {
	return []models.Order{
		makeOrder("o1", "A", "B"),
		makeOrder("o2", "A", "C"),
		makeOrder("o3", "A", "B", "C"),
	}
}

func snapshotFrom(orders []models.Order) *knowledge.Snapshot {
	assoc, pop, names, _ := builder.Build(orders)
	return knowledge.NewSnapshot(knowledge.Metadata{Version: 1, BuildID: "test"}, assoc, pop, names)
}

type countingSource struct {
	snap  *knowledge.Snapshot
	err   error
	calls atomic.Int32
}

func (c *countingSource) Load(context.Context) (*knowledge.Snapshot, error) {
	c.calls.Add(1)
	return c.snap, c.err
}

type mockHistory struct {
	orders []models.Order
	err    error
	limit  atomic.Int32
}

func (m *mockHistory) QueryOrdersByUser(_ context.Context, _ string, limit int) ([]models.Order, error) {
	m.limit.Store(int32(limit))
	return m.orders, m.err
}

func newTestService(t *testing.T, snap *knowledge.Snapshot, history OrderHistory) (*Service, *countingSource) {
	t.Helper()
	src := &countingSource{snap: snap}
	store := knowledge.NewStore(src, knowledge.Options{}, zerolog.Nop())
	svc, err := NewService(DefaultConfig(), store, history, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, src
}

func ids(c []Candidate) []string {
	out := make([]string, len(c))
	for i := range c {
		out[i] = c[i].ProductID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestByProduct_TieKeepsBuildOrder(t *testing.T) {
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	got, err := svc.ByProduct(context.Background(), "A", 2, nil)
	if err != nil {
		t.Fatalf("ByProduct() error = %v", err)
	}
	if want := []string{"B", "C"}; !equalIDs(ids(got), want) {
		t.Fatalf("ByProduct(A) = %v, want %v", ids(got), want)
	}

	wantScore := 2*10 + math.Log(3)*2
	for _, c := range got {
		if math.Abs(c.Score-wantScore) > 1e-9 {
			t.Errorf("score(%s) = %v, want %v", c.ProductID, c.Score, wantScore)
		}
		if c.IsFallback {
			t.Errorf("%s flagged as fallback", c.ProductID)
		}
		if c.AssociationCount != 2 || c.Popularity != 2 {
			t.Errorf("%s count=%d pop=%d, want 2/2", c.ProductID, c.AssociationCount, c.Popularity)
		}
	}
}

func TestByProduct_ScoreOrdering(t *testing.T) {
	orders := []models.Order{
		makeOrder("o1", "A", "X"),
		makeOrder("o2", "A", "Y"),
		makeOrder("o3", "A", "Y"),
		makeOrder("o4", "A", "Y", "Z"),
	}
	svc, _ := newTestService(t, snapshotFrom(orders), nil)

	got, err := svc.ByProduct(context.Background(), "A", 10, []string{"Z"})
	if err != nil {
		t.Fatalf("ByProduct() error = %v", err)
	}
	if want := []string{"Y", "X"}; !equalIDs(ids(got), want) {
		t.Errorf("ByProduct(A, exclude Z) = %v, want %v", ids(got), want)
	}
	for _, c := range got {
		if c.ProductID == "A" {
			t.Error("product recommended for itself")
		}
	}
}

func TestByProduct_Fallback(t *testing.T) {
	orders := append(scenarioOrders(), makeOrder("o4", "D", "E"))
	snap := snapshotFrom(orders)
	svc, _ := newTestService(t, snap, nil)

	// "lonely" has no associations at all.
	got, err := svc.ByProduct(context.Background(), "lonely", 10, []string{"B"})
	if err != nil {
		t.Fatalf("ByProduct() error = %v", err)
	}

	// Popularity: A=3, C=2, D=1, E=1 (B excluded); ties by id.
	if want := []string{"A", "C", "D", "E"}; !equalIDs(ids(got), want) {
		t.Fatalf("fallback = %v, want %v", ids(got), want)
	}
	for i, c := range got {
		if !c.IsFallback {
			t.Errorf("%s not flagged as fallback", c.ProductID)
		}
		if i > 0 && got[i-1].Popularity < c.Popularity {
			t.Errorf("fallback not sorted by popularity at %d", i)
		}
		if c.Score != float64(c.Popularity) {
			t.Errorf("fallback score %v != popularity %d", c.Score, c.Popularity)
		}
	}
}

func TestByProduct_FallbackExcludesSelf(t *testing.T) {
	assoc := knowledge.AssociationMap{}
	pop := knowledge.PopularityMap{"A": 5, "B": 3}
	svc, _ := newTestService(t, knowledge.NewSnapshot(knowledge.Metadata{}, assoc, pop, nil), nil)

	got, err := svc.ByProduct(context.Background(), "A", 10, nil)
	if err != nil {
		t.Fatalf("ByProduct() error = %v", err)
	}
	if want := []string{"B"}; !equalIDs(ids(got), want) {
		t.Errorf("fallback = %v, want %v", ids(got), want)
	}
}

func TestByProduct_InvalidInput(t *testing.T) {
	svc, src := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	_, err := svc.ByProduct(context.Background(), "", 10, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ByProduct(\"\") error = %v, want ErrInvalidInput", err)
	}
	if src.calls.Load() != 0 {
		t.Error("invalid input touched the knowledge store")
	}
}

func TestByProduct_KnowledgeNotAvailable(t *testing.T) {
	src := &countingSource{err: errors.New("file not found")}
	store := knowledge.NewStore(src, knowledge.Options{}, zerolog.Nop())
	svc, err := NewService(nil, store, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	if _, err := svc.ByProduct(context.Background(), "A", 10, nil); !errors.Is(err, ErrKnowledgeNotAvailable) {
		t.Errorf("ByProduct() error = %v, want ErrKnowledgeNotAvailable", err)
	}
	if _, err := svc.Trending(context.Background(), 10); !errors.Is(err, ErrKnowledgeNotAvailable) {
		t.Errorf("Trending() error = %v, want ErrKnowledgeNotAvailable", err)
	}
}

func TestByProduct_LimitNormalization(t *testing.T) {
	orders := make([]models.Order, 0, 150)
	for i := 0; i < 150; i++ {
		orders = append(orders, makeOrder("o", "hub", "p"+strconv.Itoa(i)))
	}
	svc, _ := newTestService(t, snapshotFrom(orders), nil)

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"zero uses default", 0, 10},
		{"negative uses default", -3, 10},
		{"within range", 25, 25},
		{"capped at max", 1000, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ByProduct(context.Background(), "hub", tt.limit, nil)
			if err != nil {
				t.Fatalf("ByProduct() error = %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestByCart_Scenario(t *testing.T) {
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	got, err := svc.ByCart(context.Background(), []CartItem{{ProductID: "A", Quantity: 1}}, 10)
	if err != nil {
		t.Fatalf("ByCart() error = %v", err)
	}
	if want := []string{"B", "C"}; !equalIDs(ids(got), want) {
		t.Fatalf("ByCart([A]) = %v, want %v", ids(got), want)
	}
	wantScore := 2*10*1 + math.Log(3)*2
	for _, c := range got {
		if c.Matches != 1 {
			t.Errorf("%s matches = %d, want 1", c.ProductID, c.Matches)
		}
		if math.Abs(c.Score-wantScore) > 1e-9 {
			t.Errorf("%s score = %v, want %v", c.ProductID, c.Score, wantScore)
		}
	}
}

func TestByCart_QuantityAndSingleBonus(t *testing.T) {
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	got, err := svc.ByCart(context.Background(), []CartItem{
		{ProductID: "B", Quantity: 3},
		{ProductID: "C", Quantity: 0},
	}, 10)
	if err != nil {
		t.Fatalf("ByCart() error = %v", err)
	}
	if len(got) != 1 || got[0].ProductID != "A" {
		t.Fatalf("ByCart([B,C]) = %v, want [A]", ids(got))
	}

	// B->A count 2 * 10 * 3, C->A count 2 * 10 * 1 (qty 0 treated as 1),
	// plus one bonus for popularity 3.
	want := 60.0 + 20.0 + math.Log(4)*2
	if math.Abs(got[0].Score-want) > 1e-9 {
		t.Errorf("score = %v, want %v", got[0].Score, want)
	}
	if got[0].Matches != 2 {
		t.Errorf("matches = %d, want 2", got[0].Matches)
	}
}

func TestByCart_RepeatedProductIsOneItem(t *testing.T) {
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	got, err := svc.ByCart(context.Background(), []CartItem{
		{ProductID: "A", Quantity: 1},
		{ProductID: "A", Quantity: 2},
	}, 10)
	if err != nil {
		t.Fatalf("ByCart() error = %v", err)
	}
	if want := []string{"B", "C"}; !equalIDs(ids(got), want) {
		t.Fatalf("ByCart([A,A]) = %v, want %v", ids(got), want)
	}

	// Quantities sum to 3; the product counts as one distinct cart item.
	wantScore := 2*10*3 + math.Log(3)*2
	for _, c := range got {
		if c.Matches != 1 || c.AssociationCount != 2 {
			t.Errorf("%s matches = %d, associationCount = %d, want 1 and 2", c.ProductID, c.Matches, c.AssociationCount)
		}
		if math.Abs(c.Score-wantScore) > 1e-9 {
			t.Errorf("%s score = %v, want %v", c.ProductID, c.Score, wantScore)
		}
	}
}

func TestByCart_ExcludesCartProducts(t *testing.T) {
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	got, err := svc.ByCart(context.Background(), []CartItem{
		{ProductID: "A", Quantity: 1},
		{ProductID: "B", Quantity: 1},
		{ProductID: "C", Quantity: 1},
	}, 10)
	if err != nil {
		t.Fatalf("ByCart() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ByCart(all) = %v, want empty", ids(got))
	}
}

func TestByCart_EmptyAndInvalid(t *testing.T) {
	svc, src := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	got, err := svc.ByCart(context.Background(), nil, 10)
	if err != nil || got == nil || len(got) != 0 {
		t.Errorf("ByCart(nil) = %v, %v, want empty list", got, err)
	}
	if src.calls.Load() != 0 {
		t.Error("empty cart loaded knowledge")
	}

	_, err = svc.ByCart(context.Background(), []CartItem{{ProductID: ""}}, 10)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("ByCart(blank id) error = %v, want ErrInvalidInput", err)
	}
}

func TestTrending_Scenario(t *testing.T) {
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	got, err := svc.Trending(context.Background(), 3)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if want := []string{"A", "B", "C"}; !equalIDs(ids(got), want) {
		t.Errorf("Trending() = %v, want %v", ids(got), want)
	}
	if got[0].Popularity != 3 || got[0].IsFallback {
		t.Errorf("Trending()[0] = %+v", got[0])
	}
}

func TestPersonalized(t *testing.T) {
	orders := []models.Order{
		makeOrder("o1", "A", "B"),
		makeOrder("o2", "A", "C"),
		makeOrder("o3", "B", "C"),
		makeOrder("o4", "A", "D"),
		makeOrder("o5", "B", "D"),
	}
	history := &mockHistory{orders: []models.Order{makeOrder("h1", "A"), makeOrder("h2", "B", "A")}}
	svc, _ := newTestService(t, snapshotFrom(orders), history)

	got, err := svc.Personalized(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Personalized() error = %v", err)
	}
	if got := history.limit.Load(); got != 5 {
		t.Errorf("history limit = %d, want 5", got)
	}

	// C and D are each nominated by both A and B with equal scores; ties by id.
	if want := []string{"C", "D"}; !equalIDs(ids(got), want) {
		t.Fatalf("Personalized() = %v, want %v", ids(got), want)
	}
	for _, c := range got {
		if c.ProductID == "A" || c.ProductID == "B" {
			t.Errorf("purchased product %s recommended", c.ProductID)
		}
		if c.Matches != 2 {
			t.Errorf("%s matches = %d, want 2", c.ProductID, c.Matches)
		}
	}

	single, err := svc.ByProduct(context.Background(), "A", 5, nil)
	if err != nil {
		t.Fatalf("ByProduct() error = %v", err)
	}
	var fromA float64
	for _, c := range single {
		if c.ProductID == "C" {
			fromA = c.Score
		}
	}
	if got[0].Score <= fromA {
		t.Errorf("summed score %v not greater than single-source score %v", got[0].Score, fromA)
	}
}

func TestPersonalized_FallsBackToTrending(t *testing.T) {
	tests := []struct {
		name    string
		history OrderHistory
	}{
		{"no history provider", nil},
		{"empty history", &mockHistory{}},
		{"history error", &mockHistory{err: errors.New("connection refused")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), tt.history)
			got, err := svc.Personalized(context.Background(), "u1", 2)
			if err != nil {
				t.Fatalf("Personalized() error = %v", err)
			}
			if want := []string{"A", "B"}; !equalIDs(ids(got), want) {
				t.Errorf("Personalized() = %v, want trending %v", ids(got), want)
			}
		})
	}
}

func TestPersonalized_RecordsOneQuery(t *testing.T) {
	queries := func(kind string) float64 {
		return testutil.ToFloat64(metrics.RecommendQueriesTotal.WithLabelValues(kind, "success"))
	}
	fallbacks := func(kind string) float64 {
		return testutil.ToFloat64(metrics.RecommendFallbacksTotal.WithLabelValues(kind))
	}

	// Z has no associations, so its nomination comes from the popularity
	// ranking.
	history := &mockHistory{orders: []models.Order{makeOrder("h1", "A", "Z")}}
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), history)

	product, trending, personalized := queries(KindProduct), queries(KindTrending), queries(KindPersonalized)
	popularity := fallbacks("popularity")

	if _, err := svc.Personalized(context.Background(), "u1", 10); err != nil {
		t.Fatalf("Personalized() error = %v", err)
	}
	if d := queries(KindPersonalized) - personalized; d != 1 {
		t.Errorf("personalized queries recorded = %v, want 1", d)
	}
	if d := queries(KindProduct) - product; d != 0 {
		t.Errorf("product queries recorded = %v, want 0", d)
	}
	if d := fallbacks("popularity") - popularity; d != 0 {
		t.Errorf("popularity fallbacks recorded = %v, want 0", d)
	}

	empty, _ := newTestService(t, snapshotFrom(scenarioOrders()), &mockHistory{})
	trendingFallbacks := fallbacks("trending")
	if _, err := empty.Personalized(context.Background(), "u2", 10); err != nil {
		t.Fatalf("Personalized() error = %v", err)
	}
	if d := queries(KindTrending) - trending; d != 0 {
		t.Errorf("trending queries recorded = %v, want 0", d)
	}
	if d := fallbacks("trending") - trendingFallbacks; d != 1 {
		t.Errorf("trending fallbacks recorded = %v, want 1", d)
	}
}

func TestPersonalized_RequiresUser(t *testing.T) {
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), &mockHistory{})
	if _, err := svc.Personalized(context.Background(), "", 10); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Personalized(\"\") error = %v, want ErrInvalidInput", err)
	}
}

func TestStatus_NoSideEffects(t *testing.T) {
	svc, src := newTestService(t, snapshotFrom(scenarioOrders()), nil)

	st := svc.Status()
	if st.Ready || st.State != "unloaded" {
		t.Errorf("Status() before load = %+v", st)
	}
	if src.calls.Load() != 0 {
		t.Fatal("Status() triggered a load")
	}

	if _, err := svc.Trending(context.Background(), 1); err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	st = svc.Status()
	if !st.Ready || st.State != "loaded" || st.Version != 1 || st.Products != 3 {
		t.Errorf("Status() after load = %+v", st)
	}
	if src.calls.Load() != 1 {
		t.Errorf("source calls = %d, want 1", src.calls.Load())
	}
}

func TestRefresh_AlwaysReloads(t *testing.T) {
	svc, src := newTestService(t, snapshotFrom(scenarioOrders()), nil)
	ctx := context.Background()

	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if err := svc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if src.calls.Load() != 2 {
		t.Errorf("source calls = %d, want 2", src.calls.Load())
	}
}

func TestConcurrentQueriesDuringRefresh(t *testing.T) {
	svc, _ := newTestService(t, snapshotFrom(scenarioOrders()), nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got, err := svc.ByProduct(ctx, "A", 2, nil)
				if err != nil {
					t.Errorf("ByProduct() error = %v", err)
					return
				}
				if !equalIDs(ids(got), []string{"B", "C"}) {
					t.Errorf("ByProduct() = %v", ids(got))
					return
				}
			}
		}()
		go func() {
			defer wg.Done()
			if err := svc.Refresh(ctx); err != nil {
				t.Errorf("Refresh() error = %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestNewService_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxLimit = 1
	store := knowledge.NewStore(&countingSource{}, knowledge.Options{}, zerolog.Nop())
	if _, err := NewService(cfg, store, nil, zerolog.Nop()); err == nil {
		t.Error("NewService() expected error for max_limit < default_limit")
	}
	if _, err := NewService(nil, nil, nil, zerolog.Nop()); err == nil {
		t.Error("NewService() expected error for nil store")
	}
}
