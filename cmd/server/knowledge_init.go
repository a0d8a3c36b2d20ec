// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/config"
	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/recommend"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
	"github.com/tomtom215/basketrec/internal/recommend/scoring"
	"github.com/tomtom215/basketrec/internal/recommend/storage"
	"github.com/tomtom215/basketrec/internal/repository"
	"github.com/tomtom215/basketrec/internal/websocket"
)

// KnowledgeComponents holds the recommendation pipeline: repositories,
// snapshot storage, the live knowledge store, the builder and the hub that
// streams load events.
type KnowledgeComponents struct {
	Orders    *repository.Orders
	Products  *repository.Products
	Snapshots storage.SnapshotStore
	Store     *knowledge.Store
	Service   *recommend.Service
	Builder   *builder.Guard
	Hub       *websocket.Hub
}

// Close releases the snapshot store.
func (k *KnowledgeComponents) Close() error {
	if k == nil || k.Snapshots == nil {
		return nil
	}
	return k.Snapshots.Close()
}

func breakerConfig(cfg *config.RecommendConfig) repository.BreakerConfig {
	bc := repository.DefaultBreakerConfig()
	bc.FailureThreshold = cfg.BreakerFailureThreshold
	if cfg.BreakerTimeout > 0 {
		bc.Timeout = cfg.BreakerTimeout
	}
	if cfg.BreakerInterval > 0 {
		bc.Interval = cfg.BreakerInterval
	}
	return bc
}

func recommendConfig(cfg *config.RecommendConfig) *recommend.Config {
	return &recommend.Config{
		Weights: scoring.Weights{
			Association: cfg.AssociationWeight,
			Popularity:  cfg.PopularityWeight,
		},
		DefaultLimit:   cfg.DefaultLimit,
		MaxLimit:       cfg.MaxLimit,
		HistoryOrders:  cfg.HistoryOrders,
		PerSourceLimit: cfg.PerSourceLimit,
		Concurrency:    cfg.Concurrency,
		LoadTimeout:    cfg.LoadTimeout,
		HistoryTimeout: cfg.HistoryTimeout,
	}
}

// loadObserver moves the snapshot gauges and notifies stream clients after
// every load attempt.
func loadObserver(hub *websocket.Hub) knowledge.LoadObserver {
	return func(snap *knowledge.Snapshot, d time.Duration, err error) {
		var (
			version, products int
			builtAt           time.Time
		)
		if snap != nil {
			meta := snap.Metadata()
			version, products, builtAt = meta.Version, meta.ProductCount, meta.BuiltAt
		}
		metrics.RecordKnowledgeLoad(version, products, builtAt, d, err)
		hub.BroadcastKnowledgeLoad(version, products, builtAt, d, err)
	}
}

// initKnowledge wires the recommendation pipeline and performs the initial
// load. A failed initial load is logged and the server starts not ready;
// the next refresh or query retries it. notifier may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initKnowledge(ctx context.Context, cfg *config.Config, db *database.DB, notifier builder.Notifier, logger zerolog.Logger) (*KnowledgeComponents, error) {
	bc := breakerConfig(&cfg.Recommend)
	orders := repository.NewOrders(db, bc, logger)
	products := repository.NewProducts(db, bc, repository.ProductCacheConfig{
		Size: cfg.Recommend.ProductCacheSize,
		TTL:  cfg.Recommend.ProductCacheTTL,
	}, logger)

	snapshots, err := storage.Open(cfg.Snapshot.Backend, cfg.Snapshot.Path, cfg.Snapshot.Keep, logger)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	hub := websocket.NewHub(logger)
	store := knowledge.NewStore(snapshots, knowledge.Options{
		LoadTimeout: cfg.Recommend.LoadTimeout,
		Observer:    loadObserver(hub),
	}, logger)

	svc, err := recommend.NewService(recommendConfig(&cfg.Recommend), store, orders, logger)
	if err != nil {
		_ = snapshots.Close()
		return nil, fmt.Errorf("create recommendation service: %w", err)
	}

	b := builder.New(orders, snapshots, notifier, builder.Config{
		QualifyingStatuses: cfg.Builder.QualifyingStatuses,
		Timeout:            cfg.Builder.Timeout,
	}, logger)

	if err := store.Init(ctx); err != nil {
		logger.Warn().Err(err).
			Str("backend", cfg.Snapshot.Backend).
			Msg("initial knowledge load failed, serving not ready until a snapshot is published")
	} else {
		st := svc.Status()
		logger.Info().
			Int("version", st.Version).
			Int("products", st.Products).
			Time("built_at", st.BuiltAt).
			Msg("knowledge loaded")
	}

	return &KnowledgeComponents{
		Orders:    orders,
		Products:  products,
		Snapshots: snapshots,
		Store:     store,
		Service:   svc,
		Builder:   builder.NewGuard(b),
		Hub:       hub,
	}, nil
}
