// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package recommend implements market-basket recommendations.
//
// # Architecture
//
// The package is the query side of a two-phase system:
//
//   - builder: offline job mining co-purchase counts and popularity from
//     qualifying orders, publishing one immutable snapshot per run
//   - storage: versioned snapshot persistence (files or BadgerDB)
//   - knowledge: the live snapshot behind an atomic pointer, with explicit
//     initial load and serialized refresh
//   - scoring: score = count*10 + ln(popularity+1)*2
//   - recommend (this package): the four query types
//
// # Queries
//
//   - ByProduct: products bought together with one product, falling back
//     to popularity ranking when the product has no associations
//   - ByCart: products complementing a whole cart, quantity weighted
//   - Trending: products by popularity
//   - Personalized: summed ByProduct results over a user's recent
//     purchases, falling back to Trending
//
// Results are deterministic for a given snapshot. Equal association scores
// keep the build-time order; popularity ties are broken by product id.
//
// # Usage
//
//	store := knowledge.NewStore(fileStore, knowledge.Options{}, logger)
//	if err := store.Init(ctx); err != nil {
//	    logger.Warn().Err(err).Msg("starting without knowledge")
//	}
//	svc, err := recommend.NewService(recommend.DefaultConfig(), store, orders, logger)
//	recs, err := svc.ByProduct(ctx, "p-123", 10, nil)
//
// # Thread Safety
//
// Queries read an immutable snapshot and take no locks. Refresh replaces
// the snapshot atomically; in-flight queries finish on the snapshot they
// started with.
package recommend
