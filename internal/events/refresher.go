// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/recommend"
)

// Consumption outcomes recorded in metrics.
const (
	OutcomeRefreshed = "refreshed"
	OutcomeStale     = "stale"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

const refreshTrigger = "event"

// KnowledgeRefresher is the part of recommend.Service the refresher drives.
type KnowledgeRefresher interface {
	RefreshFrom(ctx context.Context, trigger string) error
	Status() recommend.Status
}

// RefresherConfig controls event-triggered refreshes.
type RefresherConfig struct {
	Topic string

	// At most one refresh per Interval, with bursts of Burst. Zero Interval
	// disables limiting.
	Interval time.Duration
	Burst    int

	RetryMax      int
	RetryInterval time.Duration
	CloseTimeout  time.Duration
}

// DefaultRefresherConfig returns production defaults.
func DefaultRefresherConfig() RefresherConfig {
	return RefresherConfig{
		Topic:         DefaultTopic,
		Interval:      10 * time.Second,
		Burst:         1,
		RetryMax:      3,
		RetryInterval: time.Second,
		CloseTimeout:  10 * time.Second,
	}
}

// Refresher reloads knowledge when a newer snapshot is announced. It runs
// as a supervised service; each Serve call builds a fresh router.
type Refresher struct {
	subscriber message.Subscriber
	target     KnowledgeRefresher
	cfg        RefresherConfig
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

// NewRefresher creates a Refresher consuming from sub.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefresher(sub message.Subscriber, target KnowledgeRefresher, cfg RefresherConfig, logger zerolog.Logger) *Refresher {
	if cfg.Topic == "" {
		cfg.Topic = DefaultTopic
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	return &Refresher{
		subscriber: sub,
		target:     target,
		cfg:        cfg,
		limiter:    rate.NewLimiter(limit, cfg.Burst),
		logger:     logger.With().Str("component", "refresher").Str("topic", cfg.Topic).Logger(),
	}
}

// Serve implements suture.Service.
func (r *Refresher) Serve(ctx context.Context) error {
	wmLogger := logging.NewWatermillAdapter(r.logger)

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: r.cfg.CloseTimeout}, wmLogger)
	if err != nil {
		return fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      r.cfg.RetryMax,
			InitialInterval: r.cfg.RetryInterval,
			Multiplier:      2,
			Logger:          wmLogger,
		}.Middleware,
	)
	router.AddConsumerHandler("knowledge-refresh", r.cfg.Topic, r.subscriber, r.handle)

	r.logger.Info().Msg("refresher starting")
	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("router: %w", err)
	}
	r.logger.Info().Msg("refresher stopped")
	return ctx.Err()
}

// String returns the service name for logging.
func (r *Refresher) String() string {
	return "knowledge-refresher"
}

// handle applies one announcement. Undecodable and stale events are acked
// and dropped; refresh failures are returned so the router retries them.
func (r *Refresher) handle(msg *message.Message) error {
	ctx := msg.Context()
	event, err := UnmarshalSnapshotPublished(msg.Payload)
	if err != nil {
		r.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping invalid event")
		metrics.RecordEventConsumed(r.cfg.Topic, OutcomeInvalid)
		return nil
	}

	logger := r.logger.With().
		Str("event_id", event.EventID).
		Int("version", event.Version).
		Str("origin", event.Origin).
		Logger()

	if r.isStale(event) {
		logger.Debug().Msg("snapshot already loaded")
		metrics.RecordEventConsumed(r.cfg.Topic, OutcomeStale)
		return nil
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("refresh throttle: %w", err)
	}
	// A refresh may have completed while waiting.
	if r.isStale(event) {
		metrics.RecordEventConsumed(r.cfg.Topic, OutcomeStale)
		return nil
	}

	ctx = logging.ContextWithLogger(ctx, logger)
	ctx = logging.ContextWithBuildID(ctx, event.BuildID)
	if err := r.target.RefreshFrom(ctx, refreshTrigger); err != nil {
		metrics.RecordEventConsumed(r.cfg.Topic, OutcomeFailed)
		if errors.Is(err, context.Canceled) {
			return err
		}
		logger.Warn().Err(err).Msg("event-triggered refresh failed")
		return err
	}

	metrics.RecordEventConsumed(r.cfg.Topic, OutcomeRefreshed)
	logger.Info().Int("loaded_version", r.target.Status().Version).Msg("knowledge refreshed from event")
	return nil
}

func (r *Refresher) isStale(event *SnapshotPublished) bool {
	st := r.target.Status()
	return st.Ready && st.Version >= event.Version
}
