// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/metrics"
	"github.com/tomtom215/basketrec/internal/recommend"
)

// BreakerConfig configures the circuit breakers guarding repository calls.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// Interval after which closed-state counts reset.
	Interval time.Duration `koanf:"interval"`
	// Timeout before an open breaker lets a probe through.
	Timeout time.Duration `koanf:"timeout"`
	// FailureThreshold consecutive failures open the breaker.
	FailureThreshold uint32 `koanf:"failure_threshold"`
}

// DefaultBreakerConfig returns the breaker settings used in production.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// breaker wraps a gobreaker instance with metrics and the upstream error
// mapping shared by every repository call.
type breaker[T any] struct {
	name string
	cb   *gobreaker.CircuitBreaker[T]
}

// newBreaker creates a breaker. benign reports errors that are answers
// rather than failures and must not count towards tripping.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func newBreaker[T any](name string, cfg BreakerConfig, logger zerolog.Logger, benign func(error) bool) *breaker[T] {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	metrics.SetCircuitBreakerState(name, stateValue(gobreaker.StateClosed))

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.SetCircuitBreakerState(name, stateValue(to))
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			return benign != nil && benign(err)
		},
	}

	return &breaker[T]{
		name: name,
		cb:   gobreaker.NewCircuitBreaker[T](settings),
	}
}

// execute runs fn through the breaker. Rejections and failures are wrapped
// in recommend.ErrUpstreamLookup; benign errors pass through unchanged.
func (b *breaker[T]) execute(fn func() (T, error), benign func(error) bool) (T, error) {
	result, err := b.cb.Execute(fn)
	if err == nil {
		return result, nil
	}

	var zero T
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordCircuitBreakerRejection(b.name)
		return zero, fmt.Errorf("%w: %s: %w", recommend.ErrUpstreamLookup, b.name, err)
	}
	if benign != nil && benign(err) {
		return zero, err
	}
	return zero, fmt.Errorf("%w: %s: %w", recommend.ErrUpstreamLookup, b.name, err)
}

// State returns the breaker state name.
func (b *breaker[T]) State() string {
	return b.cb.State().String()
}

func stateValue(s gobreaker.State) int {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
