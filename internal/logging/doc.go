// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package logging provides the zerolog-based structured logging used across
basketrec.

# Quick Start

	logging.Init(logging.Config{Level: "info", Format: "json"})

	logging.Info().Msg("Server starting")
	logging.CtxErr(ctx, err).Msg("snapshot publish failed")
	logging.Ctx(ctx).Info().Str("product_id", id).Msg("fallback used")

# Components

Long-lived components take a zerolog.Logger and derive a child with a
component field:

	logger := base.With().Str("component", "builder").Logger()

# Context

HTTP middleware stores a request id; builds store a build id; event
handlers store the correlation id carried in the message. Ctx adds
whichever are present.

# Adapters

  - SlogHandler: slog.Handler for libraries that log through slog
    (sutureslog in the supervisor tree)
  - WatermillAdapter: watermill.LoggerAdapter for the event bus
  - AuditLogger: admin access decisions with masked identifiers

# Configuration

Level and format come from the logging section of the configuration file
or LOG_LEVEL, LOG_FORMAT and LOG_CALLER.

Always terminate event chains with Msg or Send; an unterminated chain is
never written.
*/
package logging
