// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package config loads and validates runtime configuration.

Sources are layered with Koanf v2, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml, or
    /etc/basketrec/config.yaml
 3. Environment variables, mapped explicitly (HTTP_PORT, DUCKDB_PATH,
    SNAPSHOT_PATH, NATS_URL, JWT_SECRET, LOG_LEVEL, ...)

List settings (CORS_ORIGINS, QUALIFYING_STATUSES) accept comma-separated
values from the environment.

Example config.yaml:

	server:
	  port: 8080
	  environment: production
	database:
	  path: /data/basketrec.duckdb
	snapshot:
	  backend: badger
	  path: /data/knowledge
	builder:
	  interval: 6h
	  qualifying_statuses: [Delivered, Preparing, Out for Delivery]
	events:
	  backend: nats
	  nats_url: nats://nats:4222

The package depends on nothing else in the module; callers translate the
sections into the configuration types of the packages they wire.
*/
package config
