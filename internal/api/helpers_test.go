// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/models"
	"github.com/tomtom215/basketrec/internal/recommend"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

type fakeRecommender struct {
	mu sync.Mutex

	byProduct    []recommend.Candidate
	byCart       []recommend.Candidate
	trending     []recommend.Candidate
	personalized []recommend.Candidate
	err          error
	refreshErr   error
	status       recommend.Status

	lastProductID string
	lastExclude   []string
	lastLimit     int
	lastUserID    string
	lastCart      []recommend.CartItem
	refreshes     int
}

func (f *fakeRecommender) ByProduct(_ context.Context, id string, limit int, exclude []string) ([]recommend.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastProductID, f.lastLimit, f.lastExclude = id, limit, exclude
	return f.byProduct, f.err
}

func (f *fakeRecommender) ByCart(_ context.Context, items []recommend.CartItem, limit int) ([]recommend.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCart, f.lastLimit = items, limit
	return f.byCart, f.err
}

func (f *fakeRecommender) Trending(_ context.Context, limit int) ([]recommend.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	return f.trending, f.err
}

func (f *fakeRecommender) Personalized(_ context.Context, userID string, limit int) ([]recommend.Candidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUserID, f.lastLimit = userID, limit
	return f.personalized, f.err
}

func (f *fakeRecommender) Refresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr == nil {
		f.status.Ready = true
		f.status.State = knowledge.StateLoaded.String()
	}
	return f.refreshErr
}

func (f *fakeRecommender) Status() recommend.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeRecommender) IsReady() bool { return f.Status().Ready }

type fakeCatalog struct {
	products map[string]*models.Product
	failing  map[string]bool
	arrivals []models.Product
	err      error
}

func (c *fakeCatalog) GetProduct(_ context.Context, id string) (*models.Product, error) {
	if c.failing[id] {
		return nil, recommend.ErrUpstreamLookup
	}
	if p, ok := c.products[id]; ok {
		return p, nil
	}
	return nil, database.ErrProductNotFound
}

func (c *fakeCatalog) NewArrivals(_ context.Context, limit int) ([]models.Product, error) {
	if c.err != nil {
		return nil, c.err
	}
	if limit < len(c.arrivals) {
		return c.arrivals[:limit], nil
	}
	return c.arrivals, nil
}

type fakeRebuilder struct {
	res   *builder.Result
	err   error
	block chan struct{}
	runs  int
}

func (b *fakeRebuilder) Run(context.Context) (*builder.Result, error) {
	b.runs++
	if b.block != nil {
		<-b.block
	}
	return b.res, b.err
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

var errPingFailed = errors.New("connection refused")

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[string]*models.Product{
			"milk":   {ID: "milk", Name: "Milk", Price: 1.2, Stock: 10, Unit: "l"},
			"bread":  {ID: "bread", Name: "Bread", Price: 2.5, Stock: 5},
			"butter": {ID: "butter", Name: "Butter", Price: 3, Stock: 4},
			"jam":    {ID: "jam", Name: "Jam", Price: 4, Stock: 2},
		},
		failing: map[string]bool{},
		arrivals: []models.Product{
			{ID: "jam", Name: "Jam", CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
			{ID: "butter", Name: "Butter", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func newTestHandler(rec *fakeRecommender, cat *fakeCatalog) *Handler {
	return NewHandler(DefaultHandlerConfig(), rec, cat, nil, nil, nil)
}

// decoded is the envelope with data left raw for per-test decoding.
type decoded struct {
	Success       bool            `json:"success"`
	Count         *int            `json:"count"`
	Data          json.RawMessage `json:"data"`
	SourceProduct *ProductRef     `json:"sourceProduct"`
	Message       string          `json:"message"`
	Error         *APIError       `json:"error"`
	Meta          *APIMeta        `json:"meta"`
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target string, body interface{}) (*httptest.ResponseRecorder, decoded) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h(rec, req)

	return rec, decodeEnvelope(t, rec)
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) decoded {
	t.Helper()
	var env decoded
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}
