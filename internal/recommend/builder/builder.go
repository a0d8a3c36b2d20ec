// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package builder is the offline association-mining job.
//
// A run reads every qualifying order from the order repository, mines
// pairwise co-occurrence counts and per-product popularity, and publishes
// the result as one new snapshot version. Publishing is atomic: readers see
// either the previous version or the new one, never a mix.
package builder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/models"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

// OrderSource reads historical orders.
type OrderSource interface {
	// QueryOrders returns orders whose status is in statuses, oldest first.
	QueryOrders(ctx context.Context, statuses []string) ([]models.Order, error)
}

// Sink persists a snapshot as a new version and returns the stored metadata.
type Sink interface {
	Publish(ctx context.Context, snap *knowledge.Snapshot) (knowledge.Metadata, error)
}

// Notifier announces a published snapshot to other replicas.
type Notifier interface {
	NotifyPublished(ctx context.Context, meta knowledge.Metadata) error
}

// Config controls a Builder.
type Config struct {
	// QualifyingStatuses selects which orders are mined.
	QualifyingStatuses []string

	// Timeout bounds one run. Zero means no bound beyond the caller's context.
	Timeout time.Duration
}

// DefaultConfig returns the builder defaults.
func DefaultConfig() Config {
	return Config{
		QualifyingStatuses: models.DefaultQualifyingStatuses(),
		Timeout:            10 * time.Minute,
	}
}

// Result describes a completed run.
type Result struct {
	Metadata knowledge.Metadata
	Stats    Stats
	Duration time.Duration
}

// Builder runs the mining job against a repository and a sink.
type Builder struct {
	orders   OrderSource
	sink     Sink
	notifier Notifier
	cfg      Config
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a Builder. notifier may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(orders OrderSource, sink Sink, notifier Notifier, cfg Config, logger zerolog.Logger) *Builder {
	if len(cfg.QualifyingStatuses) == 0 {
		cfg.QualifyingStatuses = models.DefaultQualifyingStatuses()
	}
	return &Builder{
		orders:   orders,
		sink:     sink,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With().Str("component", "builder").Logger(),
		now:      time.Now,
	}
}

// Run performs one full build and publish.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	start := b.now()
	res, err := b.run(ctx)
	elapsed := time.Since(start)

	var stats Stats
	if res != nil {
		stats = res.Stats
		res.Duration = elapsed
	}
	metrics.RecordBuild(elapsed, stats.OrdersScanned, stats.OrdersUsed, err)

	if err != nil {
		b.logger.Error().Err(err).Dur("duration", elapsed).Msg("association build failed")
		return nil, err
	}

	b.logger.Info().
		Int("version", res.Metadata.Version).
		Str("build_id", res.Metadata.BuildID).
		Int("orders_scanned", stats.OrdersScanned).
		Int("orders_used", stats.OrdersUsed).
		Int("products", stats.Products).
		Dur("duration", elapsed).
		Msg("association build published")
	return res, nil
}

func (b *Builder) run(ctx context.Context) (*Result, error) {
	buildID := uuid.New().String()
	logger := b.logger.With().Str("build_id", buildID).Logger()

	orders, err := b.orders.QueryOrders(ctx, b.cfg.QualifyingStatuses)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	logger.Debug().Int("orders", len(orders)).Msg("analyzing orders")

	assoc, pop, names, stats := Build(orders)
	if stats.OrdersScanned == 0 {
		logger.Warn().
			Strs("statuses", b.cfg.QualifyingStatuses).
			Msg("no qualifying orders found, publishing empty knowledge")
	}

	snap := knowledge.NewSnapshot(knowledge.Metadata{
		BuildID:       buildID,
		BuiltAt:       b.now().UTC(),
		OrdersScanned: stats.OrdersScanned,
		OrdersUsed:    stats.OrdersUsed,
	}, assoc, pop, names)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build aborted: %w", err)
	}

	meta, err := b.sink.Publish(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("publish snapshot: %w", err)
	}

	if b.notifier != nil {
		if err := b.notifier.NotifyPublished(ctx, meta); err != nil {
			// Replicas still pick the version up on their next scheduled refresh.
			logger.Warn().Err(err).Int("version", meta.Version).Msg("failed to announce snapshot")
		}
	}

	return &Result{Metadata: meta, Stats: stats}, nil
}

// ErrBuildInProgress is returned by Guard.Run when a run is already active.
var ErrBuildInProgress = errors.New("build already in progress")

// Guard allows only one concurrent run of a Builder.
type Guard struct {
	builder *Builder
	sem     chan struct{}
}

// NewGuard wraps b.
func NewGuard(b *Builder) *Guard {
	return &Guard{builder: b, sem: make(chan struct{}, 1)}
}

// Run starts a build unless one is already running.
func (g *Guard) Run(ctx context.Context) (*Result, error) {
	select {
	case g.sem <- struct{}{}:
	default:
		return nil, ErrBuildInProgress
	}
	defer func() { <-g.sem }()
	return g.builder.Run(ctx)
}
