// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/basketrec/internal/recommend/scoring"
)

// Config contains the query-time settings of the recommendation service.
type Config struct {
	// Weights are the scoring coefficients.
	Weights scoring.Weights `json:"weights" koanf:"weights"`

	// DefaultLimit applies when a query passes limit <= 0.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`

	// MaxLimit caps every query's limit.
	MaxLimit int `json:"max_limit" koanf:"max_limit"`

	// HistoryOrders is how many recent orders personalization reads.
	HistoryOrders int `json:"history_orders" koanf:"history_orders"`

	// PerSourceLimit is the limit used for each purchased product during
	// personalization.
	PerSourceLimit int `json:"per_source_limit" koanf:"per_source_limit"`

	// Concurrency bounds parallel per-source lookups in personalization.
	Concurrency int `json:"concurrency" koanf:"concurrency"`

	// LoadTimeout bounds a single snapshot load.
	LoadTimeout time.Duration `json:"load_timeout" koanf:"load_timeout"`

	// HistoryTimeout bounds the order history lookup.
	HistoryTimeout time.Duration `json:"history_timeout" koanf:"history_timeout"`
}

// DefaultConfig returns production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights:        scoring.DefaultWeights(),
		DefaultLimit:   10,
		MaxLimit:       100,
		HistoryOrders:  5,
		PerSourceLimit: 5,
		Concurrency:    4,
		LoadTimeout:    30 * time.Second,
		HistoryTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("weights: %w", err)
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("default_limit must be positive, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max_limit (%d) must be >= default_limit (%d)", c.MaxLimit, c.DefaultLimit)
	}
	if c.HistoryOrders <= 0 {
		return fmt.Errorf("history_orders must be positive, got %d", c.HistoryOrders)
	}
	if c.PerSourceLimit <= 0 {
		return fmt.Errorf("per_source_limit must be positive, got %d", c.PerSourceLimit)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.LoadTimeout <= 0 {
		return fmt.Errorf("load_timeout must be positive, got %v", c.LoadTimeout)
	}
	if c.HistoryTimeout <= 0 {
		return fmt.Errorf("history_timeout must be positive, got %v", c.HistoryTimeout)
	}
	return nil
}

// normalizeLimit applies the default and the cap.
func (c *Config) normalizeLimit(limit int) int {
	if limit <= 0 {
		return c.DefaultLimit
	}
	if limit > c.MaxLimit {
		return c.MaxLimit
	}
	return limit
}
