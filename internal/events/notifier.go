// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

const publishBreakerName = "events-publish"

// ErrNotifierClosed is returned after Close.
var ErrNotifierClosed = errors.New("notifier is closed")

// Notifier announces published snapshots on a topic. It satisfies
// builder.Notifier.
type Notifier struct {
	publisher message.Publisher
	topic     string
	origin    string
	cb        *gobreaker.CircuitBreaker[struct{}]
	logger    zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewNotifier creates a Notifier. origin identifies this process in the
// announcements it sends.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewNotifier(pub message.Publisher, topic, origin string, logger zerolog.Logger) *Notifier {
	if topic == "" {
		topic = DefaultTopic
	}
	logger = logger.With().Str("component", "notifier").Str("topic", topic).Logger()

	metrics.SetCircuitBreakerState(publishBreakerName, 0)
	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        publishBreakerName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("publish circuit breaker state changed")
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})

	return &Notifier{
		publisher: pub,
		topic:     topic,
		origin:    origin,
		cb:        cb,
		logger:    logger,
	}
}

// NotifyPublished sends one SnapshotPublished event for meta.
func (n *Notifier) NotifyPublished(ctx context.Context, meta knowledge.Metadata) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return ErrNotifierClosed
	}

	event := newSnapshotPublished(uuid.New().String(), n.origin, meta)
	payload, err := event.Marshal()
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.EventID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("version", strconv.Itoa(meta.Version))
	msg.Metadata.Set("build_id", meta.BuildID)
	msg.Metadata.Set("origin", n.origin)

	_, err = n.cb.Execute(func() (struct{}, error) {
		return struct{}{}, n.publisher.Publish(n.topic, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordCircuitBreakerRejection(publishBreakerName)
	}
	metrics.RecordEventPublished(n.topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", n.topic, err)
	}

	n.logger.Debug().
		Str("event_id", event.EventID).
		Int("version", meta.Version).
		Msg("snapshot announced")
	return nil
}

// Close stops further announcements. The publisher is owned by the
// Transport and is not closed here.
func (n *Notifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	return nil
}
