// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package websocket streams knowledge snapshot events to dashboards and
deploy tooling.

A client connecting to the status stream first receives a "status" frame
with the current recommend.Status. After that the hub pushes one frame per
snapshot load attempt:

	{"type":"knowledge_loaded","data":{"version":7,"products":412,...}}
	{"type":"knowledge_load_failed","data":{"error":"...","durationMs":3}}

Clients may send {"type":"ping"} and receive {"type":"pong"}. Server pings
keep idle connections alive through proxies.

The Hub runs under the supervisor tree (Serve implements suture.Service).
Broadcasts never block the caller: a full hub queue drops the message and
a client whose own queue is full is disconnected.
*/
package websocket
