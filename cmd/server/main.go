// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/tomtom215/basketrec/docs" // swagger docs
	"github.com/tomtom215/basketrec/internal/config"
	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
	"github.com/tomtom215/basketrec/internal/supervisor"
	"github.com/tomtom215/basketrec/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server failed")
	}
}

//nolint:gocyclo // sequential setup steps
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	logger := logging.Logger()

	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("snapshot_backend", cfg.Snapshot.Backend).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("starting basketrec")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing database")
		}
	}()

	if cfg.Database.SeedMockData {
		logger.Info().Msg("seeding demo catalog and orders (SEED_MOCK_DATA=true)")
		if err := db.SeedMockData(ctx); err != nil {
			return err
		}
	}

	ev, err := initEvents(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := ev.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing event transport")
		}
	}()

	var notifier builder.Notifier
	if ev != nil {
		notifier = ev.Notifier
	}

	kc, err := initKnowledge(ctx, cfg, db, notifier, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := kc.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing snapshot store")
		}
	}()

	server, err := newHTTPServer(cfg, kc, db, logger)
	if err != nil {
		return err
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	if cfg.Builder.Enabled {
		tree.AddKnowledgeService(services.NewBuildService(kc.Builder, kc.Service, services.BuildServiceConfig{
			RunOnStartup: cfg.Builder.RunOnStartup,
			Interval:     cfg.Builder.Interval,
		}, logger))
	}
	if ev != nil {
		tree.AddMessagingService(ev.NewRefresher(kc.Service, logger))
	}
	tree.AddAPIService(kc.Hub)
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logger))

	logger.Info().
		Bool("builder", cfg.Builder.Enabled).
		Bool("events", ev != nil).
		Bool("ready", kc.Service.IsReady()).
		Msg("starting supervisor tree")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("supervisor tree error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logger.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
		}
	}

	logger.Info().Msg("basketrec stopped")
	return nil
}
