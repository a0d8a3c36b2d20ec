// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package supervisor runs the long-lived parts of the basketrec server under a
suture v4 supervisor tree.

# Layout

	basketrec
	├── knowledge-layer
	│   └── knowledge-builder    (services.BuildService, when builder.enabled)
	├── messaging-layer
	│   └── knowledge-refresher  (events.Refresher, when events.enabled)
	└── api-layer
	    ├── websocket-hub        (websocket.Hub)
	    └── http-server          (services.HTTPServerService)

A crashed service is restarted with suture's backoff. Failures are counted
per layer, so a broker outage that keeps the refresher restarting does not
affect the API.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddKnowledgeService(services.NewBuildService(guard, svc, buildCfg, logger))
	tree.AddMessagingService(refresher)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, shutdownTimeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Supervisor events (start, stop, panic, backoff) are logged through
sutureslog into the zerolog logger via logging.NewSlogLogger.
*/
package supervisor
