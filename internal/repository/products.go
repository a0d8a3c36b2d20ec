// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/cache"
	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/models"
)

// ProductStore is the raw catalog repository.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	NewArrivals(ctx context.Context, limit int) ([]models.Product, error)
}

// ProductCacheConfig sizes the product lookup cache. Size 0 disables it.
type ProductCacheConfig struct {
	Size int           `koanf:"size"`
	TTL  time.Duration `koanf:"ttl"`
}

// Products guards a ProductStore with a breaker and caches single-product
// lookups. A missing product is an answer: it returns
// database.ErrProductNotFound and never trips the breaker.
type Products struct {
	store ProductStore
	get   *breaker[*models.Product]
	list  *breaker[[]models.Product]
	cache *cache.LRU[*models.Product]
}

func isNotFound(err error) bool {
	return errors.Is(err, database.ErrProductNotFound)
}

// NewProducts wraps store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProducts(store ProductStore, cfg BreakerConfig, cacheCfg ProductCacheConfig, logger zerolog.Logger) *Products {
	logger = logger.With().Str("component", "repository").Logger()
	p := &Products{
		store: store,
		get:   newBreaker[*models.Product]("products-get", cfg, logger, isNotFound),
		list:  newBreaker[[]models.Product]("products-list", cfg, logger, nil),
	}
	if cacheCfg.Size > 0 {
		p.cache = cache.NewLRU[*models.Product](cacheCfg.Size, cacheCfg.TTL)
	}
	return p
}

// GetProduct returns a product, from cache when possible.
func (p *Products) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if p.cache != nil {
		if prod, ok := p.cache.Get(id); ok {
			metrics.RecordCacheLookup("products", true)
			return prod, nil
		}
		metrics.RecordCacheLookup("products", false)
	}

	prod, err := p.get.execute(func() (*models.Product, error) {
		return p.store.GetProduct(ctx, id)
	}, isNotFound)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.Add(id, prod)
	}
	return prod, nil
}

// NewArrivals returns the newest products. Results are not cached.
func (p *Products) NewArrivals(ctx context.Context, limit int) ([]models.Product, error) {
	return p.list.execute(func() ([]models.Product, error) {
		return p.store.NewArrivals(ctx, limit)
	}, nil)
}

// Invalidate drops every cached product.
func (p *Products) Invalidate() {
	if p.cache != nil {
		p.cache.Clear()
	}
}

// BreakerStates reports each breaker's state by name.
func (p *Products) BreakerStates() map[string]string {
	return map[string]string{
		p.get.name:  p.get.State(),
		p.list.name: p.list.State(),
	}
}
