// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Command builder runs one offline association build: it mines the
// qualifying orders in DuckDB, publishes the snapshot to the configured
// snapshot store and, when events are enabled, announces the new version
// so running servers reload it. It exits non-zero when the build fails.
//
// It reads the same configuration as the server:
//
//	DUCKDB_PATH=/data/basketrec.duckdb SNAPSHOT_BACKEND=file SNAPSHOT_PATH=/shared/knowledge \
//	EVENTS_BACKEND=nats NATS_URL=nats://nats:4222 ./builder
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/config"
	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/events"
	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
	"github.com/tomtom215/basketrec/internal/recommend/storage"
	"github.com/tomtom215/basketrec/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, cfg, logging.Logger())
	stop()
	os.Exit(code)
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) int {
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open database")
		return 1
	}
	defer db.Close()

	if cfg.Database.SeedMockData {
		if err := db.SeedMockData(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to seed mock data")
			return 1
		}
	}

	snapshots, err := storage.Open(cfg.Snapshot.Backend, cfg.Snapshot.Path, cfg.Snapshot.Keep, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to open snapshot store")
		return 1
	}
	defer snapshots.Close()

	var notifier builder.Notifier
	if cfg.Events.Enabled && cfg.Events.Backend == events.BackendNATS {
		ec := events.DefaultConfig()
		ec.Backend = events.BackendNATS
		ec.Topic = cfg.Events.Topic
		ec.URL = cfg.Events.NATSURL
		transport, err := events.NewTransport(ec, logger)
		if err != nil {
			// The snapshot is still published; servers pick it up on their
			// next refresh.
			logger.Warn().Err(err).Msg("event transport unavailable, publishing without announcement")
		} else {
			defer transport.Close()
			host, _ := os.Hostname()
			n := events.NewNotifier(transport.Publisher, cfg.Events.Topic, "builder-"+host, logger)
			defer n.Close()
			notifier = n
		}
	}

	orders := repository.NewOrders(db, repository.DefaultBreakerConfig(), logger)
	b := builder.New(orders, snapshots, notifier, builder.Config{
		QualifyingStatuses: cfg.Builder.QualifyingStatuses,
		Timeout:            cfg.Builder.Timeout,
	}, logger)

	res, err := b.Run(ctx)
	if err != nil {
		return 1
	}
	logger.Info().
		Int("version", res.Metadata.Version).
		Int("orders_used", res.Stats.OrdersUsed).
		Int("products", res.Stats.Products).
		Msg("build complete")
	return 0
}
