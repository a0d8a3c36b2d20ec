// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package storage persists versioned knowledge snapshots.
//
// Two backends implement SnapshotStore:
//   - FileStore: one directory per version plus a CURRENT pointer file,
//     suited to a shared volume read by several replicas
//   - BadgerStore: one BadgerDB transaction per version, suited to a single
//     node that already runs an embedded key-value store
//
// # Storage Format
//
// Each version holds three JSON documents and a manifest:
//
//	product-associations.json  {"productId": {"relatedId": count, ...}, ...}
//	product-popularity.json    {"productId": count, ...}
//	product-names.json         {"productId": "name", ...}
//	manifest.json              metadata, document sizes, SHA-256 checksum
//
// The related-product objects keep their build-time order (count
// descending, first-seen on ties). Loads verify the checksum before
// decoding, and both stores implement knowledge.Source so a
// knowledge.Store can load from either.
//
// # Usage Example
//
//	store, err := storage.NewFileStore("/data/knowledge", 5, logger)
//	if err != nil {
//	    return err
//	}
//	meta, err := store.Publish(ctx, snap)
//	...
//	live := knowledge.NewStore(store, knowledge.Options{}, logger)
//	err = live.Init(ctx)
package storage
