// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
	"github.com/tomtom215/basketrec/internal/recommend/scoring"
)

// Service answers recommendation queries from the live knowledge snapshot.
// It is safe for concurrent use; queries take no locks.
type Service struct {
	cfg     *Config
	store   KnowledgeStore
	history OrderHistory
	scorer  scoring.Scorer
	logger  zerolog.Logger
}

// NewService creates a Service. history may be nil, in which case
// personalization always falls back to trending.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewService(cfg *Config, store KnowledgeStore, history OrderHistory, logger zerolog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("knowledge store is required")
	}

	return &Service{
		cfg:     cfg,
		store:   store,
		history: history,
		scorer:  scoring.New(cfg.Weights),
		logger:  logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// snapshot ensures knowledge is loaded and returns the live snapshot.
func (s *Service) snapshot(ctx context.Context) (*knowledge.Snapshot, error) {
	if err := s.store.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	snap := s.store.Snapshot()
	if snap == nil {
		return nil, ErrKnowledgeNotAvailable
	}
	return snap, nil
}

func (s *Service) observe(kind string, start time.Time, out []Candidate, err error) {
	metrics.RecordQuery(kind, time.Since(start), len(out), err)
}

// ByProduct recommends products frequently bought together with productID.
//
// When productID has no associations the result is every other known
// product ranked by popularity, each flagged IsFallback. Otherwise related
// products are scored and sorted by score descending; equal scores keep the
// build-time association order.
func (s *Service) ByProduct(ctx context.Context, productID string, limit int, excludeIDs []string) (out []Candidate, err error) {
	start := time.Now()
	defer func() { s.observe(KindProduct, start, out, err) }()

	if productID == "" {
		return nil, invalidInput("product id is required")
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	out, fallback := s.productCandidates(snap, productID, s.cfg.normalizeLimit(limit), excludeIDs)
	if fallback {
		metrics.RecordFallback("popularity")
		logging.Ctx(ctx).Debug().
			Str("product_id", productID).
			Str("product", snap.Name(productID)).
			Msg("no associations, using popularity fallback")
	}
	return out, nil
}

// productCandidates ranks the products related to productID in snap. It
// records nothing; the bool reports whether the popularity fallback
// answered.
func (s *Service) productCandidates(snap *knowledge.Snapshot, productID string, limit int, excludeIDs []string) ([]Candidate, bool) {
	excluded := make(map[string]struct{}, len(excludeIDs)+1)
	excluded[productID] = struct{}{}
	for _, id := range excludeIDs {
		excluded[id] = struct{}{}
	}

	related := snap.Related(productID)
	if len(related) == 0 {
		return popularityRanking(snap, excluded, limit, true), true
	}

	out := make([]Candidate, 0, len(related))
	for _, a := range related {
		if _, skip := excluded[a.ProductID]; skip {
			continue
		}
		pop := snap.Popularity(a.ProductID)
		out = append(out, Candidate{
			ProductID:        a.ProductID,
			Score:            s.scorer.Score(a.Count, pop),
			AssociationCount: a.Count,
			Popularity:       pop,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return truncate(out, limit), false
}

// popularityRanking lists known products by popularity descending, then by
// product id ascending.
func popularityRanking(snap *knowledge.Snapshot, excluded map[string]struct{}, limit int, fallback bool) []Candidate {
	out := make([]Candidate, 0, limit)
	for _, id := range snap.ByPopularity() {
		if len(out) >= limit {
			break
		}
		if _, skip := excluded[id]; skip {
			continue
		}
		pop := snap.Popularity(id)
		out = append(out, Candidate{
			ProductID:  id,
			Score:      float64(pop),
			Popularity: pop,
			IsFallback: fallback,
		})
	}
	return out
}

// cartAccumulator collects per-candidate association scores in the order
// candidates were first nominated.
type cartAccumulator struct {
	order []string
	byID  map[string]*Candidate
}

func (a *cartAccumulator) get(id string) *Candidate {
	c, ok := a.byID[id]
	if !ok {
		c = &Candidate{ProductID: id}
		a.byID[id] = c
		a.order = append(a.order, id)
	}
	return c
}

// ByCart recommends products that complement a whole cart. Repeated
// products are merged first, so each distinct cart item adds
// count*AssociationWeight*quantity to every related candidate and one
// match; the popularity bonus is added once per candidate. Products already
// in the cart are never returned. There is no fallback: an empty result is
// valid.
func (s *Service) ByCart(ctx context.Context, items []CartItem, limit int) (out []Candidate, err error) {
	start := time.Now()
	defer func() { s.observe(KindCart, start, out, err) }()

	for i := range items {
		if items[i].ProductID == "" {
			return nil, invalidInput("cart item %d has no product id", i)
		}
	}
	if len(items) == 0 {
		return []Candidate{}, nil
	}
	limit = s.cfg.normalizeLimit(limit)

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	lines, inCart := mergeCartLines(items)

	acc := cartAccumulator{byID: make(map[string]*Candidate)}
	for _, line := range lines {
		for _, a := range snap.Related(line.ProductID) {
			if _, skip := inCart[a.ProductID]; skip {
				continue
			}
			c := acc.get(a.ProductID)
			c.Score += s.scorer.AssociationTerm(a.Count, line.Quantity)
			c.AssociationCount += a.Count
			c.Matches++
		}
	}

	out = make([]Candidate, 0, len(acc.order))
	for _, id := range acc.order {
		c := acc.byID[id]
		c.Popularity = snap.Popularity(id)
		c.Score += s.scorer.PopularityBonus(c.Popularity)
		out = append(out, *c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return truncate(out, limit), nil
}

// mergeCartLines collapses repeated products into one line in first-seen
// order, summing quantities. A quantity <= 0 counts as 1.
func mergeCartLines(items []CartItem) ([]CartItem, map[string]struct{}) {
	lines := make([]CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	inCart := make(map[string]struct{}, len(items))
	for i := range items {
		qty := items[i].Quantity
		if qty <= 0 {
			qty = 1
		}
		if at, ok := index[items[i].ProductID]; ok {
			lines[at].Quantity += qty
			continue
		}
		index[items[i].ProductID] = len(lines)
		inCart[items[i].ProductID] = struct{}{}
		lines = append(lines, CartItem{ProductID: items[i].ProductID, Quantity: qty})
	}
	return lines, inCart
}

// Trending ranks every known product by popularity descending, then by
// product id ascending.
func (s *Service) Trending(ctx context.Context, limit int) (out []Candidate, err error) {
	start := time.Now()
	defer func() { s.observe(KindTrending, start, out, err) }()

	return s.trending(ctx, limit)
}

func (s *Service) trending(ctx context.Context, limit int) ([]Candidate, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return popularityRanking(snap, nil, s.cfg.normalizeLimit(limit), false), nil
}

// Refresh reloads the persisted snapshot. On failure the previous snapshot
// stays live and the error is returned.
func (s *Service) Refresh(ctx context.Context) error {
	return s.RefreshFrom(ctx, "manual")
}

// RefreshFrom is Refresh with the trigger recorded in metrics and logs.
func (s *Service) RefreshFrom(ctx context.Context, trigger string) error {
	err := s.store.Refresh(ctx)
	metrics.RecordRefresh(trigger, err)
	if err != nil {
		return err
	}
	s.logger.Info().Str("trigger", trigger).Msg("knowledge refreshed")
	return nil
}

// Status reports readiness without loading anything.
func (s *Service) Status() Status {
	st := Status{
		Ready:    s.store.IsReady(),
		State:    s.store.State().String(),
		LoadedAt: s.store.LastLoaded(),
	}
	if err := s.store.LastError(); err != nil {
		st.LastError = err.Error()
	}
	if snap := s.store.Snapshot(); snap != nil {
		meta := snap.Metadata()
		st.Version = meta.Version
		st.BuildID = meta.BuildID
		st.BuiltAt = meta.BuiltAt
		st.Products = meta.ProductCount
	}
	return st
}

// IsReady reports whether a snapshot is loaded.
func (s *Service) IsReady() bool {
	return s.store.IsReady()
}

// Name returns the cached display name of a product.
func (s *Service) Name(productID string) string {
	if snap := s.store.Snapshot(); snap != nil {
		return snap.Name(productID)
	}
	return knowledge.UnknownName
}

func truncate(c []Candidate, limit int) []Candidate {
	if len(c) > limit {
		return c[:limit]
	}
	return c
}
