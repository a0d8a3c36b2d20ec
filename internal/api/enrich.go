// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/models"
)

// enrich fetches the catalog record of each id concurrently. The result is
// index-aligned with ids; missing products and failed lookups are nil.
func (h *Handler) enrich(ctx context.Context, ids []string) []*models.Product {
	products := make([]*models.Product, len(ids))
	if len(ids) == 0 {
		return products
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.cfg.EnrichConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			p, err := h.catalog.GetProduct(gctx, id)
			switch {
			case err == nil:
				products[i] = p
			case errors.Is(err, database.ErrProductNotFound):
				logging.Ctx(ctx).Debug().Str("product_id", id).Msg("recommended product no longer in catalog")
			default:
				logging.Ctx(ctx).Warn().Err(err).Str("product_id", id).Msg("product lookup failed, skipping")
			}
			// Lookup failures skip one item; they never cancel the others.
			return nil
		})
	}
	_ = g.Wait()
	return products
}
