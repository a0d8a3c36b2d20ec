// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package storage

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Snapshot backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// Open opens the snapshot store for backend. path is the FileStore base
// directory or the BadgerDB directory ("" opens Badger in memory).
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(backend, path string, keep int, logger zerolog.Logger) (SnapshotStore, error) {
	switch backend {
	case BackendFile, "":
		if path == "" {
			return nil, fmt.Errorf("file snapshot store requires a path")
		}
		return NewFileStore(path, keep, logger)
	case BackendBadger:
		return OpenBadgerStore(path, keep, logger)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", backend)
	}
}
