// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

// Document names. The three knowledge documents keep the names used by the
// shop backend so existing exports can be imported unchanged.
const (
	AssociationsFile = "product-associations.json"
	PopularityFile   = "product-popularity.json"
	NamesFile        = "product-names.json"
	ManifestFile     = "manifest.json"
)

var (
	// ErrNoSnapshot is returned when nothing has been published yet.
	ErrNoSnapshot = errors.New("no snapshot published")

	// ErrChecksumMismatch is returned when stored documents do not match
	// the checksum recorded at publish time.
	ErrChecksumMismatch = errors.New("snapshot checksum mismatch")
)

// SnapshotStore persists versioned snapshots.
type SnapshotStore interface {
	knowledge.Source

	// Publish stores snap as the next version and makes it current.
	Publish(ctx context.Context, snap *knowledge.Snapshot) (knowledge.Metadata, error)

	// List returns metadata of all stored versions, newest first.
	List(ctx context.Context) ([]knowledge.Metadata, error)

	// Prune removes all but the newest keep versions.
	Prune(ctx context.Context, keep int) error

	Close() error
}

// documents holds the encoded form of one snapshot.
type documents struct {
	associations []byte
	popularity   []byte
	names        []byte
}

// manifest is written next to the documents of a version.
type manifest struct {
	Metadata knowledge.Metadata `json:"metadata"`
	Files    map[string]int     `json:"files"`
}

func encodeSnapshot(snap *knowledge.Snapshot) (documents, error) {
	var docs documents
	var err error

	if docs.associations, err = json.MarshalIndent(snap.Associations(), "", "  "); err != nil {
		return docs, fmt.Errorf("encode associations: %w", err)
	}
	if docs.popularity, err = json.MarshalIndent(snap.PopularityMap(), "", "  "); err != nil {
		return docs, fmt.Errorf("encode popularity: %w", err)
	}
	if docs.names, err = json.MarshalIndent(snap.Names(), "", "  "); err != nil {
		return docs, fmt.Errorf("encode names: %w", err)
	}
	return docs, nil
}

// checksum is the SHA-256 over the three documents, each prefixed by its name.
func (d documents) checksum() string {
	h := sha256.New()
	for _, part := range []struct {
		name string
		data []byte
	}{
		{AssociationsFile, d.associations},
		{PopularityFile, d.popularity},
		{NamesFile, d.names},
	} {
		h.Write([]byte(part.name))
		h.Write([]byte{0})
		h.Write(part.data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (d documents) sizes() map[string]int {
	return map[string]int{
		AssociationsFile: len(d.associations),
		PopularityFile:   len(d.popularity),
		NamesFile:        len(d.names),
	}
}

// decodeSnapshot verifies and decodes documents. An empty expected checksum
// skips verification.
//
//nolint:gocritic // meta copied into the snapshot
func decodeSnapshot(meta knowledge.Metadata, docs documents) (*knowledge.Snapshot, error) {
	if meta.Checksum != "" {
		if got := docs.checksum(); got != meta.Checksum {
			return nil, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, meta.Checksum, got)
		}
	}

	var assoc knowledge.AssociationMap
	if err := json.Unmarshal(docs.associations, &assoc); err != nil {
		return nil, fmt.Errorf("decode associations: %w", err)
	}
	var pop knowledge.PopularityMap
	if err := json.Unmarshal(docs.popularity, &pop); err != nil {
		return nil, fmt.Errorf("decode popularity: %w", err)
	}

	// Names are informational; a missing document renders every name as unknown.
	var names knowledge.NameMap
	if len(docs.names) > 0 {
		if err := json.Unmarshal(docs.names, &names); err != nil {
			return nil, fmt.Errorf("decode names: %w", err)
		}
	}

	snap := knowledge.NewSnapshot(meta, assoc, pop, names)
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("validate snapshot: %w", err)
	}
	return snap, nil
}

// ctxErr returns a wrapped context error if ctx is done.
func ctxErr(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
