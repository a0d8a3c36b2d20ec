// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/metrics"
)

// Personalized recommends from the user's recent purchases.
//
// The distinct products of the user's most recent orders each nominate
// their top related products; scores are summed across sources and the
// purchased products themselves are excluded. Users without history, or
// whose history cannot be read, get Trending instead.
func (s *Service) Personalized(ctx context.Context, userID string, limit int) (out []Candidate, err error) {
	start := time.Now()
	defer func() { s.observe(KindPersonalized, start, out, err) }()

	if userID == "" {
		return nil, invalidInput("user id is required")
	}
	limit = s.cfg.normalizeLimit(limit)
	logger := logging.Ctx(ctx).With().Str("user_id", userID).Logger()

	purchased, err := s.purchasedProducts(ctx, userID)
	if err != nil {
		logger.Warn().Err(err).Msg("order history unavailable, using trending")
		metrics.RecordFallback("trending")
		return s.trending(ctx, limit)
	}
	if len(purchased) == 0 {
		logger.Debug().Msg("no purchase history, using trending")
		metrics.RecordFallback("trending")
		return s.trending(ctx, limit)
	}

	// Every source reads the same snapshot, even if a refresh lands
	// mid-request.
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	perSource := s.cfg.normalizeLimit(s.cfg.PerSourceLimit)

	bought := make(map[string]struct{}, len(purchased))
	for _, id := range purchased {
		bought[id] = struct{}{}
	}

	var (
		mu     sync.Mutex
		scores = make(map[string]*Candidate)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, pid := range purchased {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("recommend for %s: %w", pid, err)
			}
			recs, _ := s.productCandidates(snap, pid, perSource, nil)

			mu.Lock()
			defer mu.Unlock()
			for _, r := range recs {
				if _, skip := bought[r.ProductID]; skip {
					continue
				}
				c, ok := scores[r.ProductID]
				if !ok {
					c = &Candidate{ProductID: r.ProductID, Popularity: r.Popularity}
					scores[r.ProductID] = c
				}
				c.Score += r.Score
				c.AssociationCount += r.AssociationCount
				c.Matches++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out = make([]Candidate, 0, len(scores))
	for _, c := range scores {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ProductID < out[j].ProductID
	})

	logger.Debug().
		Int("purchased", len(purchased)).
		Int("candidates", len(out)).
		Msg("personalized recommendations computed")
	return truncate(out, limit), nil
}

// purchasedProducts returns the distinct products of the user's recent
// orders in most-recent-first order.
func (s *Service) purchasedProducts(ctx context.Context, userID string) ([]string, error) {
	if s.history == nil {
		return nil, nil
	}

	hctx, cancel := context.WithTimeout(ctx, s.cfg.HistoryTimeout)
	defer cancel()

	orders, err := s.history.QueryOrdersByUser(hctx, userID, s.cfg.HistoryOrders)
	if err != nil {
		return nil, fmt.Errorf("%w: order history: %w", ErrUpstreamLookup, err)
	}

	seen := make(map[string]struct{})
	var ids []string
	for i := range orders {
		for _, id := range orders[i].ProductIDs() {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids, nil
}
