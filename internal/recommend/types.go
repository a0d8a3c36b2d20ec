// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/basketrec/internal/models"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

// Query kinds, used as metric labels and in logs.
const (
	KindProduct      = "product"
	KindCart         = "cart"
	KindTrending     = "trending"
	KindPersonalized = "personalized"
)

// Candidate is one ranked recommendation. It is computed per query and
// never persisted.
type Candidate struct {
	// ProductID identifies the recommended product.
	ProductID string `json:"productId"`

	// Score is the ranking value. For association-based results it comes
	// from the scoring engine; for fallback and trending results it is the
	// raw popularity.
	Score float64 `json:"score"`

	// AssociationCount is the co-occurrence count with the query product,
	// summed over nominating cart items for cart queries.
	AssociationCount int `json:"associationCount"`

	// Popularity is the number of qualifying orders containing the product.
	Popularity int `json:"popularity"`

	// IsFallback is set when the result came from popularity ranking
	// because the query product had no associations.
	IsFallback bool `json:"isFallback"`

	// Matches counts the cart items that nominated this candidate.
	Matches int `json:"matches,omitempty"`
}

// CartItem is one line of a cart query.
type CartItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity"`
}

// Status is a side-effect-free view of the knowledge state.
type Status struct {
	Ready     bool      `json:"ready"`
	State     string    `json:"state"`
	Version   int       `json:"version,omitempty"`
	BuildID   string    `json:"buildId,omitempty"`
	BuiltAt   time.Time `json:"builtAt,omitempty"`
	LoadedAt  time.Time `json:"loadedAt,omitempty"`
	Products  int       `json:"products"`
	LastError string    `json:"lastError,omitempty"`
}

// KnowledgeStore is the subset of knowledge.Store the service reads.
type KnowledgeStore interface {
	EnsureLoaded(ctx context.Context) error
	Refresh(ctx context.Context) error
	Snapshot() *knowledge.Snapshot
	IsReady() bool
	State() knowledge.State
	LastError() error
	LastLoaded() time.Time
}

// OrderHistory returns a user's recent orders.
type OrderHistory interface {
	// QueryOrdersByUser returns at most limit orders, most recent first.
	QueryOrdersByUser(ctx context.Context, userID string, limit int) ([]models.Order, error)
}
