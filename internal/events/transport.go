// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/logging"
)

// Transport backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// Config selects and configures the event transport.
type Config struct {
	Backend string
	Topic   string

	// NATS backend
	URL            string
	EmbeddedServer bool
	EmbeddedHost   string
	EmbeddedPort   int
	QueueGroup     string // "" delivers every event to every replica

	MaxReconnects int
	ReconnectWait time.Duration
	CloseTimeout  time.Duration
}

// DefaultConfig returns an in-process transport.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendGoChannel,
		Topic:         DefaultTopic,
		URL:           natsgo.DefaultURL,
		EmbeddedHost:  "127.0.0.1",
		EmbeddedPort:  natsgo.DefaultPort,
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		CloseTimeout:  10 * time.Second,
	}
}

// Transport bundles a publisher and a subscriber over one backend.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	server *EmbeddedServer
	closed bool
}

// NewTransport connects the configured backend. With EmbeddedServer set
// the NATS backend starts its own server and connects to it.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTransport(cfg Config, logger zerolog.Logger) (*Transport, error) {
	wmLogger := logging.NewWatermillAdapter(logger.With().Str("component", "events").Logger())

	switch cfg.Backend {
	case BackendGoChannel, "":
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, wmLogger)
		return &Transport{Publisher: ch, Subscriber: ch}, nil
	case BackendNATS:
		return newNATSTransport(cfg, logger, wmLogger)
	default:
		return nil, fmt.Errorf("unknown event backend %q", cfg.Backend)
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newNATSTransport(cfg Config, logger zerolog.Logger, wmLogger watermill.LoggerAdapter) (*Transport, error) {
	t := &Transport{}
	url := cfg.URL
	if cfg.EmbeddedServer {
		srv, err := NewEmbeddedServer(cfg.EmbeddedHost, cfg.EmbeddedPort)
		if err != nil {
			return nil, err
		}
		t.server = srv
		url = srv.ClientURL()
		logger.Info().Str("url", url).Msg("embedded NATS server started")
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("basketrec"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	// Announcements are fire-and-forget: core NATS, no JetStream stream.
	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		t.shutdownServer()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}
	t.Publisher = pub

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, wmLogger)
	if err != nil {
		_ = pub.Close()
		t.shutdownServer()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}
	t.Subscriber = sub

	return t, nil
}

// ServerURL returns the embedded server URL, or "" without one.
func (t *Transport) ServerURL() string {
	if t.server == nil {
		return ""
	}
	return t.server.ClientURL()
}

func (t *Transport) shutdownServer() {
	if t.server != nil {
		t.server.Shutdown()
		t.server = nil
	}
}

// Close closes the subscriber, then the publisher, then the embedded
// server. Calling Close twice is a no-op.
func (t *Transport) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true

	var errs []error
	if t.Subscriber != nil {
		if err := t.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	// gochannel uses one value for both roles.
	if t.Publisher != nil && any(t.Publisher) != any(t.Subscriber) {
		if err := t.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	t.shutdownServer()
	return errors.Join(errs...)
}
