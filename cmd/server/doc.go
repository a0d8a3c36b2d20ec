// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Command server runs the basketrec recommendation API.

# Startup

 1. Configuration: koanf defaults, optional config.yaml, environment
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB order and product store (optionally seeded with a demo catalog)
 4. Events: gochannel or NATS transport for snapshot announcements
 5. Knowledge: snapshot store (file or badger), knowledge store with an
    explicit initial load, recommendation service, association builder
 6. HTTP: chi router with JWT or Basic authentication, Casbin
    authorization and a WebSocket status stream
 7. Supervisor tree: scheduled builds, event refresher, status hub, HTTP server

A failed initial knowledge load does not stop the server. It starts with
/api/v1/health/ready reporting 503 and serves queries once a snapshot is
published and loaded by a rebuild, a refresh or an event.

# Process Tree

	basketrec
	├── knowledge-layer
	│   └── knowledge-builder    (BUILDER_ENABLED)
	├── messaging-layer
	│   └── knowledge-refresher  (EVENTS_ENABLED)
	└── api-layer
	    ├── websocket-hub
	    └── http-server

# Deployments

Single node: the server builds on a schedule, publishes to local storage
and reloads itself.

	BUILDER_ENABLED=true SNAPSHOT_BACKEND=badger EVENTS_BACKEND=gochannel ./server

Several replicas on a shared volume: one cmd/builder job publishes and
announces over NATS; each replica runs with the builder disabled and
reloads on the announcement.

	BUILDER_ENABLED=false SNAPSHOT_BACKEND=file SNAPSHOT_PATH=/shared/knowledge \
	EVENTS_BACKEND=nats NATS_URL=nats://nats:4222 ./server

# Signals

SIGINT and SIGTERM cancel the tree. The HTTP server drains for
SHUTDOWN_TIMEOUT before the database and snapshot store close.
*/
package main
