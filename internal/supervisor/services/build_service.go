// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/recommend"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
)

// DefaultBuildInterval is used when BuildServiceConfig.Interval is unset.
const DefaultBuildInterval = 24 * time.Hour

// Rebuilder runs one association build. *builder.Guard satisfies it.
type Rebuilder interface {
	Run(ctx context.Context) (*builder.Result, error)
}

// LocalKnowledge is the part of recommend.Service reloaded after a build.
type LocalKnowledge interface {
	RefreshFrom(ctx context.Context, trigger string) error
	Status() recommend.Status
}

// BuildServiceConfig schedules in-process rebuilds.
type BuildServiceConfig struct {
	RunOnStartup bool
	Interval     time.Duration
}

// BuildService rebuilds the association knowledge on a fixed interval and
// reloads the local store when the published version is newer than the one
// being served. Build failures are logged and retried on the next tick;
// they never stop the service.
type BuildService struct {
	builder   Rebuilder
	knowledge LocalKnowledge
	config    BuildServiceConfig
	logger    zerolog.Logger
}

// NewBuildService creates the scheduled build service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBuildService(b Rebuilder, k LocalKnowledge, cfg BuildServiceConfig, logger zerolog.Logger) *BuildService {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultBuildInterval
	}
	return &BuildService{
		builder:   b,
		knowledge: k,
		config:    cfg,
		logger:    logger.With().Str("service", "knowledge-builder").Logger(),
	}
}

// Serve implements suture.Service.
func (s *BuildService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("build schedule starting")

	if s.config.RunOnStartup {
		s.buildOnce(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("build schedule stopped")
			return ctx.Err()
		case <-ticker.C:
			s.buildOnce(ctx, "schedule")
		}
	}
}

// buildOnce reports whether a build was published.
func (s *BuildService) buildOnce(ctx context.Context, trigger string) bool {
	res, err := s.builder.Run(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Str("trigger", trigger).Msg("scheduled build failed, retrying next interval")
		}
		return false
	}

	// An event subscriber may already have loaded this version.
	if s.knowledge.Status().Version >= res.Metadata.Version {
		return true
	}
	if err := s.knowledge.RefreshFrom(ctx, "build"); err != nil {
		s.logger.Warn().Err(err).Int("version", res.Metadata.Version).Msg("reload after build failed")
	}
	return true
}

// String returns the service name for logging.
func (s *BuildService) String() string {
	return "knowledge-builder"
}
