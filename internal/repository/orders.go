// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package repository

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/models"
)

// OrderStore is the raw order repository.
type OrderStore interface {
	QueryOrders(ctx context.Context, statuses []string) ([]models.Order, error)
	QueryOrdersByUser(ctx context.Context, userID string, limit int) ([]models.Order, error)
}

// Orders guards an OrderStore with separate breakers for the offline scan
// and the per-request history lookup, so a slow full scan cannot open the
// breaker serving live traffic.
type Orders struct {
	store   OrderStore
	scan    *breaker[[]models.Order]
	history *breaker[[]models.Order]
}

// NewOrders wraps store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewOrders(store OrderStore, cfg BreakerConfig, logger zerolog.Logger) *Orders {
	logger = logger.With().Str("component", "repository").Logger()
	return &Orders{
		store:   store,
		scan:    newBreaker[[]models.Order]("orders-scan", cfg, logger, nil),
		history: newBreaker[[]models.Order]("orders-history", cfg, logger, nil),
	}
}

// QueryOrders returns orders with a status in statuses, oldest first.
func (o *Orders) QueryOrders(ctx context.Context, statuses []string) ([]models.Order, error) {
	return o.scan.execute(func() ([]models.Order, error) {
		return o.store.QueryOrders(ctx, statuses)
	}, nil)
}

// QueryOrdersByUser returns the user's most recent orders.
func (o *Orders) QueryOrdersByUser(ctx context.Context, userID string, limit int) ([]models.Order, error) {
	return o.history.execute(func() ([]models.Order, error) {
		return o.store.QueryOrdersByUser(ctx, userID, limit)
	}, nil)
}

// BreakerStates reports each breaker's state by name.
func (o *Orders) BreakerStates() map[string]string {
	return map[string]string{
		o.scan.name:    o.scan.State(),
		o.history.name: o.history.State(),
	}
}
