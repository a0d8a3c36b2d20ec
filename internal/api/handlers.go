// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"context"
	"time"

	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/models"
	"github.com/tomtom215/basketrec/internal/recommend"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
	ws "github.com/tomtom215/basketrec/internal/websocket"
)

// Recommender answers recommendation queries. *recommend.Service
// implements it.
type Recommender interface {
	ByProduct(ctx context.Context, productID string, limit int, excludeIDs []string) ([]recommend.Candidate, error)
	ByCart(ctx context.Context, items []recommend.CartItem, limit int) ([]recommend.Candidate, error)
	Trending(ctx context.Context, limit int) ([]recommend.Candidate, error)
	Personalized(ctx context.Context, userID string, limit int) ([]recommend.Candidate, error)
	Refresh(ctx context.Context) error
	Status() recommend.Status
	IsReady() bool
}

// Catalog reads products for enrichment. *repository.Products implements it.
type Catalog interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	NewArrivals(ctx context.Context, limit int) ([]models.Product, error)
}

// Rebuilder runs the association builder once. *builder.Guard implements it.
type Rebuilder interface {
	Run(ctx context.Context) (*builder.Result, error)
}

// Pinger checks a dependency's connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HandlerConfig tunes the handlers.
type HandlerConfig struct {
	// DefaultLimit is used when a request omits limit.
	DefaultLimit int

	// EnrichConcurrency bounds parallel product lookups per request.
	EnrichConcurrency int

	// RequestTimeout bounds one recommendation request.
	RequestTimeout time.Duration

	// AllowedOrigins are the browser origins admitted to the status
	// stream. "*" admits any origin.
	AllowedOrigins []string
}

// DefaultHandlerConfig returns the handler defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		DefaultLimit:      10,
		EnrichConcurrency: 8,
		RequestTimeout:    10 * time.Second,
	}
}

// Handler serves the recommendation API.
type Handler struct {
	cfg         HandlerConfig
	recommender Recommender
	catalog     Catalog
	rebuilder   Rebuilder
	db          Pinger
	audit       *logging.AuditLogger
	hub         *ws.Hub
	startTime   time.Time
}

// NewHandler creates a Handler. rebuilder, db and audit may be nil.
func NewHandler(cfg HandlerConfig, recommender Recommender, catalog Catalog, rebuilder Rebuilder, db Pinger, audit *logging.AuditLogger) *Handler {
	defaults := DefaultHandlerConfig()
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaults.DefaultLimit
	}
	if cfg.EnrichConcurrency <= 0 {
		cfg.EnrichConcurrency = defaults.EnrichConcurrency
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaults.RequestTimeout
	}
	return &Handler{
		cfg:         cfg,
		recommender: recommender,
		catalog:     catalog,
		rebuilder:   rebuilder,
		db:          db,
		audit:       audit,
		startTime:   time.Now(),
	}
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.cfg.RequestTimeout)
}
