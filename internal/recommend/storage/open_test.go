// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		path    string
		wantErr bool
	}{
		{name: "file", backend: BackendFile, path: t.TempDir()},
		{name: "default is file", backend: "", path: t.TempDir()},
		{name: "file without path", backend: BackendFile, wantErr: true},
		{name: "badger in memory", backend: BackendBadger},
		{name: "badger on disk", backend: BackendBadger, path: t.TempDir()},
		{name: "unknown backend", backend: "s3", path: t.TempDir(), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.backend, tt.path, 2, zerolog.Nop())
			if tt.wantErr {
				if err == nil {
					t.Fatal("Open() error = nil, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer store.Close()

			ctx := context.Background()
			if _, err := store.Load(ctx); !errors.Is(err, ErrNoSnapshot) {
				t.Errorf("Load() on empty store = %v, want ErrNoSnapshot", err)
			}
			meta, err := store.Publish(ctx, sampleSnapshot("open-test"))
			if err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			if meta.Version != 1 {
				t.Errorf("Version = %d, want 1", meta.Version)
			}
		})
	}
}
