// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

/*
Package events announces published knowledge snapshots between processes.

When the builder persists a new snapshot version, a Notifier sends a
SnapshotPublished event on the knowledge.published topic. Every query
replica runs a Refresher that consumes the topic and reloads knowledge
from the snapshot store when the announced version is newer than the one
it serves. Events carry metadata only; the snapshot itself is always read
from storage.

Transports are Watermill publishers and subscribers:

  - gochannel: in-process, for a server that builds and serves
  - nats: core NATS through watermill-nats, optionally with an embedded
    nats-server for single-host deployments

Refreshes are throttled with a token bucket, so a burst of announcements
costs one reload. Undecodable and stale events are acknowledged and
dropped. A failed reload is retried by the router middleware; the
previously loaded snapshot keeps serving in the meantime, and the next
scheduled refresh picks the version up regardless.
*/
package events
