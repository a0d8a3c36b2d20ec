// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package main

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/config"
	"github.com/tomtom215/basketrec/internal/recommend/storage"
)

func builderConfig(t *testing.T) *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 1, SeedMockData: true},
		Snapshot: config.SnapshotConfig{Backend: storage.BackendFile, Path: t.TempDir(), Keep: 2},
		Builder: config.BuilderConfig{
			Timeout:            time.Minute,
			QualifyingStatuses: []string{"Delivered", "Preparing", "Out for Delivery"},
		},
	}
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
		want   int
	}{
		{name: "seeded orders publish", want: 0},
		{name: "empty database still publishes", modify: func(c *config.Config) { c.Database.SeedMockData = false }, want: 0},
		{name: "unknown snapshot backend", modify: func(c *config.Config) { c.Snapshot.Backend = "s3" }, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := builderConfig(t)
			if tt.modify != nil {
				tt.modify(cfg)
			}
			if got := run(context.Background(), cfg, zerolog.Nop()); got != tt.want {
				t.Fatalf("run() = %d, want %d", got, tt.want)
			}
			if tt.want != 0 {
				return
			}

			store, err := storage.NewFileStore(cfg.Snapshot.Path, 2, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewFileStore() error = %v", err)
			}
			snap, err := store.Load(context.Background())
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if snap.Metadata().Version != 1 {
				t.Errorf("Version = %d, want 1", snap.Metadata().Version)
			}
		})
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := run(ctx, builderConfig(t), zerolog.Nop()); got != 1 {
		t.Errorf("run() with canceled context = %d, want 1", got)
	}
}
