// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/config"
	"github.com/tomtom215/basketrec/internal/events"
)

// EventComponents holds the snapshot announcement transport.
type EventComponents struct {
	Transport *events.Transport
	Notifier  *events.Notifier
	cfg       config.EventsConfig
}

func eventsConfig(cfg *config.EventsConfig) events.Config {
	ec := events.DefaultConfig()
	ec.Backend = cfg.Backend
	ec.Topic = cfg.Topic
	if cfg.NATSURL != "" {
		ec.URL = cfg.NATSURL
	}
	ec.EmbeddedServer = cfg.EmbeddedServer
	if cfg.EmbeddedPort > 0 {
		ec.EmbeddedPort = cfg.EmbeddedPort
	}
	ec.QueueGroup = cfg.QueueGroup
	return ec
}

// processOrigin identifies this process in the events it publishes.
func processOrigin() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "basketrec"
	}
	return host + "-" + uuid.NewString()[:8]
}

// initEvents connects the event transport. It returns nil when events are
// disabled.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func initEvents(cfg *config.Config, logger zerolog.Logger) (*EventComponents, error) {
	if !cfg.Events.Enabled {
		logger.Info().Msg("snapshot events disabled")
		return nil, nil
	}

	transport, err := events.NewTransport(eventsConfig(&cfg.Events), logger)
	if err != nil {
		return nil, fmt.Errorf("create event transport: %w", err)
	}

	logger.Info().
		Str("backend", cfg.Events.Backend).
		Str("topic", cfg.Events.Topic).
		Str("embedded_server", transport.ServerURL()).
		Msg("snapshot events enabled")

	return &EventComponents{
		Transport: transport,
		Notifier:  events.NewNotifier(transport.Publisher, cfg.Events.Topic, processOrigin(), logger),
		cfg:       cfg.Events,
	}, nil
}

// NewRefresher creates the subscriber that reloads target on announcements.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (e *EventComponents) NewRefresher(target events.KnowledgeRefresher, logger zerolog.Logger) *events.Refresher {
	rc := events.DefaultRefresherConfig()
	rc.Topic = e.cfg.Topic
	rc.Interval = e.cfg.RefreshInterval
	if e.cfg.RefreshBurst > 0 {
		rc.Burst = e.cfg.RefreshBurst
	}
	return events.NewRefresher(e.Transport.Subscriber, target, rc, logger)
}

// Close closes the notifier, then the transport.
func (e *EventComponents) Close() error {
	if e == nil {
		return nil
	}
	if err := e.Notifier.Close(); err != nil {
		return err
	}
	return e.Transport.Close()
}
