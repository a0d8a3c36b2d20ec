// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/config"
	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/recommend/storage"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            0,
			Timeout:         5 * time.Second,
			ShutdownTimeout: time.Second,
			Environment:     "development",
		},
		Database: config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1},
		Recommend: config.RecommendConfig{
			AssociationWeight: 10,
			PopularityWeight:  2,
			DefaultLimit:      10,
			MaxLimit:          100,
			HistoryOrders:     5,
			PerSourceLimit:    5,
			Concurrency:       2,
			LoadTimeout:       5 * time.Second,
			HistoryTimeout:    time.Second,
			ProductCacheSize:  100,
			ProductCacheTTL:   time.Minute,
		},
		Snapshot: config.SnapshotConfig{Backend: storage.BackendBadger, Keep: 2},
		Builder: config.BuilderConfig{
			Timeout:            time.Minute,
			QualifyingStatuses: []string{"Delivered", "Preparing", "Out for Delivery"},
		},
		Events: config.EventsConfig{
			Enabled:         true,
			Backend:         "gochannel",
			Topic:           "knowledge.published",
			RefreshInterval: 0,
			RefreshBurst:    1,
		},
		Security: config.SecurityConfig{
			AuthMode:        "none",
			DefaultRole:     "viewer",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   1000,
			RateLimitWindow: time.Minute,
		},
	}
}

func seededDB(t *testing.T, cfg *config.Config) *database.DB {
	t.Helper()
	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.SeedMockData(context.Background()); err != nil {
		t.Fatalf("SeedMockData() error = %v", err)
	}
	return db
}

func TestRecommendConfigMapping(t *testing.T) {
	cfg := testConfig()
	rc := recommendConfig(&cfg.Recommend)
	if err := rc.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if rc.Weights.Association != 10 || rc.Weights.Popularity != 2 {
		t.Errorf("Weights = %+v, want {10 2}", rc.Weights)
	}
	if rc.HistoryOrders != 5 || rc.PerSourceLimit != 5 {
		t.Errorf("history settings not mapped: %+v", rc)
	}

	bc := breakerConfig(&cfg.Recommend)
	if bc.Timeout <= 0 || bc.Interval <= 0 {
		t.Errorf("breaker defaults lost: %+v", bc)
	}
}

func TestEventsConfigMapping(t *testing.T) {
	ec := eventsConfig(&config.EventsConfig{
		Backend:      "nats",
		Topic:        "custom.topic",
		NATSURL:      "nats://broker:4222",
		EmbeddedPort: 0,
		QueueGroup:   "replicas",
	})
	if ec.Backend != "nats" || ec.Topic != "custom.topic" || ec.URL != "nats://broker:4222" || ec.QueueGroup != "replicas" {
		t.Errorf("eventsConfig() = %+v", ec)
	}
	if ec.EmbeddedPort == 0 {
		t.Error("zero embedded port should keep the default")
	}
}

func TestInitEvents_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Events.Enabled = false

	ev, err := initEvents(cfg, zerolog.Nop())
	if err != nil || ev != nil {
		t.Fatalf("initEvents() = %v, %v; want nil, nil", ev, err)
	}
	if err := ev.Close(); err != nil {
		t.Errorf("Close() on nil components = %v", err)
	}
}

func TestInitKnowledge_BuildThenServe(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	db := seededDB(t, cfg)

	ev, err := initEvents(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("initEvents() error = %v", err)
	}
	defer ev.Close()

	kc, err := initKnowledge(ctx, cfg, db, ev.Notifier, zerolog.Nop())
	if err != nil {
		t.Fatalf("initKnowledge() error = %v", err)
	}
	defer kc.Close()

	if kc.Service.IsReady() {
		t.Fatal("service ready before any snapshot was published")
	}
	if kc.Hub == nil {
		t.Fatal("status hub not created")
	}

	res, err := kc.Builder.Run(ctx)
	if err != nil {
		t.Fatalf("Builder.Run() error = %v", err)
	}
	if res.Metadata.Version != 1 || res.Stats.OrdersUsed == 0 {
		t.Fatalf("unexpected build result: %+v", res)
	}

	if err := kc.Service.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	st := kc.Service.Status()
	if !st.Ready || st.Version != 1 {
		t.Fatalf("Status() = %+v, want ready at version 1", st)
	}

	recs, err := kc.Service.ByProduct(ctx, "milk", 3, nil)
	if err != nil {
		t.Fatalf("ByProduct() error = %v", err)
	}
	if len(recs) == 0 || recs[0].IsFallback {
		t.Fatalf("ByProduct(milk) = %+v, want associated products", recs)
	}
	for _, c := range recs {
		if c.ProductID == "milk" {
			t.Error("source product recommended to itself")
		}
	}
}

func TestNewHTTPServer_Routes(t *testing.T) {
	cfg := testConfig()
	db := seededDB(t, cfg)

	kc, err := initKnowledge(context.Background(), cfg, db, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("initKnowledge() error = %v", err)
	}
	defer kc.Close()

	server, err := newHTTPServer(cfg, kc, db, zerolog.Nop())
	if err != nil {
		t.Fatalf("newHTTPServer() error = %v", err)
	}
	if server.Addr != "127.0.0.1:0" {
		t.Errorf("Addr = %q", server.Addr)
	}
	if server.WriteTimeout < cfg.Builder.Timeout {
		t.Errorf("WriteTimeout %v shorter than builder timeout %v", server.WriteTimeout, cfg.Builder.Timeout)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health/live", http.StatusOK},
		{http.MethodGet, "/api/v1/health/ready", http.StatusServiceUnavailable},
		{http.MethodGet, "/api/v1/recommend/status", http.StatusOK},
		{http.MethodGet, "/api/v1/recommend/trending", http.StatusServiceUnavailable},
		{http.MethodPost, "/api/v1/recommend/rebuild", http.StatusOK},
		{http.MethodGet, "/api/v1/recommend/trending", http.StatusOK},
		{http.MethodGet, "/api/v1/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/ws/knowledge", http.StatusBadRequest},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(""))
		rec := httptest.NewRecorder()
		server.Handler.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("%s %s = %d, want %d (body %s)", tt.method, tt.path, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestInitAuth_InvalidMode(t *testing.T) {
	cfg := testConfig()
	cfg.Security.AuthMode = "oidc"
	if _, _, err := initAuth(&cfg.Security, nil, zerolog.Nop()); err == nil {
		t.Error("initAuth() with unknown mode should fail")
	}

	cfg.Security.AuthMode = "basic"
	cfg.Security.BasicUsername = "rebuild-bot"
	cfg.Security.BasicPassword = "short"
	if _, _, err := initAuth(&cfg.Security, nil, zerolog.Nop()); err == nil {
		t.Error("initAuth() with a short basic password should fail")
	}
	cfg.Security.BasicPassword = "long-enough-password"
	if _, _, err := initAuth(&cfg.Security, nil, zerolog.Nop()); err != nil {
		t.Errorf("initAuth() basic = %v", err)
	}

	cfg.Security.AuthMode = "jwt"
	cfg.Security.JWTSecret = "short"
	if _, _, err := initAuth(&cfg.Security, nil, zerolog.Nop()); err == nil {
		t.Error("initAuth() with a short secret should fail")
	}
}
