// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package recommend

import (
	"testing"

	"github.com/tomtom215/basketrec/internal/recommend/scoring"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}
	if cfg.Weights != scoring.DefaultWeights() {
		t.Errorf("Weights = %+v, want defaults", cfg.Weights)
	}
	if cfg.DefaultLimit != 10 {
		t.Errorf("DefaultLimit = %d, want 10", cfg.DefaultLimit)
	}
	if cfg.HistoryOrders != 5 || cfg.PerSourceLimit != 5 {
		t.Errorf("HistoryOrders = %d, PerSourceLimit = %d, want 5/5", cfg.HistoryOrders, cfg.PerSourceLimit)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero association weight", func(c *Config) { c.Weights.Association = 0 }},
		{"negative popularity weight", func(c *Config) { c.Weights.Popularity = -1 }},
		{"zero default limit", func(c *Config) { c.DefaultLimit = 0 }},
		{"max below default", func(c *Config) { c.MaxLimit = 5 }},
		{"zero history orders", func(c *Config) { c.HistoryOrders = 0 }},
		{"zero per source limit", func(c *Config) { c.PerSourceLimit = 0 }},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }},
		{"zero load timeout", func(c *Config) { c.LoadTimeout = 0 }},
		{"zero history timeout", func(c *Config) { c.HistoryTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() expected error")
			}
		})
	}
}
