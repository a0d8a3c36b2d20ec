// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package services adapts basketrec components to suture's Serve pattern.

  - HTTPServerService runs the API server and drains it on shutdown.
  - BuildService rebuilds the association knowledge on a fixed interval and
    reloads the local knowledge store when a newer version was published.

The event-driven refresher (events.Refresher) implements suture.Service
itself and needs no wrapper.
*/
package services
