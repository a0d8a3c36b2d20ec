// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

// Key layout:
//
//	snapshot:current            -> version number
//	snapshot:v{N}:manifest      -> manifest JSON
//	snapshot:v{N}:{document}    -> document JSON
const (
	badgerCurrentKey = "snapshot:current"
	badgerPrefix     = "snapshot:v"
)

func badgerKey(version int, name string) []byte {
	return []byte(badgerPrefix + strconv.Itoa(version) + ":" + name)
}

// BadgerStore keeps snapshot versions in BadgerDB. A version and the
// current pointer are written in one transaction.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool
	keep   int
	logger zerolog.Logger
}

// OpenBadgerStore opens a BadgerDB at path. An empty path opens an
// in-memory database.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenBadgerStore(path string, keep int, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for snapshots: %w", err)
	}
	s := NewBadgerStoreFromDB(db, keep, logger)
	s.ownsDB = true
	return s, nil
}

// NewBadgerStoreFromDB wraps an existing database. Close does not close db.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBadgerStoreFromDB(db *badger.DB, keep int, logger zerolog.Logger) *BadgerStore {
	if keep <= 0 {
		keep = DefaultKeepVersions
	}
	return &BadgerStore{
		db:     db,
		keep:   keep,
		logger: logger.With().Str("component", "snapshot_badger_store").Logger(),
	}
}

func readCurrent(txn *badger.Txn) (int, error) {
	item, err := txn.Get([]byte(badgerCurrentKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var v int
	err = item.Value(func(val []byte) error {
		var perr error
		v, perr = strconv.Atoi(string(val))
		return perr
	})
	return v, err
}

func readValue(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Publish implements SnapshotStore.
func (s *BadgerStore) Publish(ctx context.Context, snap *knowledge.Snapshot) (knowledge.Metadata, error) {
	docs, err := encodeSnapshot(snap)
	if err != nil {
		return knowledge.Metadata{}, err
	}
	if err := ctxErr(ctx, "publish snapshot"); err != nil {
		return knowledge.Metadata{}, err
	}

	var meta knowledge.Metadata
	err = s.db.Update(func(txn *badger.Txn) error {
		current, err := readCurrent(txn)
		if err != nil {
			return fmt.Errorf("read current version: %w", err)
		}

		meta = snap.Metadata()
		meta.Version = current + 1
		meta.Checksum = docs.checksum()

		mf, err := json.Marshal(manifest{Metadata: meta, Files: docs.sizes()})
		if err != nil {
			return fmt.Errorf("encode manifest: %w", err)
		}

		for name, data := range map[string][]byte{
			AssociationsFile: docs.associations,
			PopularityFile:   docs.popularity,
			NamesFile:        docs.names,
			ManifestFile:     mf,
		} {
			if err := txn.Set(badgerKey(meta.Version, name), data); err != nil {
				return fmt.Errorf("write %s: %w", name, err)
			}
		}
		return txn.Set([]byte(badgerCurrentKey), []byte(strconv.Itoa(meta.Version)))
	})
	if err != nil {
		return knowledge.Metadata{}, fmt.Errorf("publish snapshot: %w", err)
	}

	s.logger.Info().Int("version", meta.Version).Str("checksum", meta.Checksum).Msg("snapshot published")

	if err := s.Prune(ctx, s.keep); err != nil {
		s.logger.Warn().Err(err).Msg("failed to prune old snapshot versions")
	}
	return meta, nil
}

// Load implements knowledge.Source.
func (s *BadgerStore) Load(ctx context.Context) (*knowledge.Snapshot, error) {
	var version int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		version, err = readCurrent(txn)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read current version: %w", err)
	}
	if version == 0 {
		return nil, ErrNoSnapshot
	}
	return s.LoadVersion(ctx, version)
}

// LoadVersion reads and verifies a specific version.
func (s *BadgerStore) LoadVersion(ctx context.Context, version int) (*knowledge.Snapshot, error) {
	var mf manifest
	var docs documents

	err := s.db.View(func(txn *badger.Txn) error {
		raw, err := readValue(txn, badgerKey(version, ManifestFile))
		if err != nil {
			return fmt.Errorf("read manifest: %w", err)
		}
		if err := json.Unmarshal(raw, &mf); err != nil {
			return fmt.Errorf("decode manifest: %w", err)
		}
		if docs.associations, err = readValue(txn, badgerKey(version, AssociationsFile)); err != nil {
			return fmt.Errorf("read associations: %w", err)
		}
		if docs.popularity, err = readValue(txn, badgerKey(version, PopularityFile)); err != nil {
			return fmt.Errorf("read popularity: %w", err)
		}
		if docs.names, err = readValue(txn, badgerKey(version, NamesFile)); err != nil {
			return fmt.Errorf("read names: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("version %d: %w", version, ErrNoSnapshot)
		}
		return nil, fmt.Errorf("version %d: %w", version, err)
	}
	if err := ctxErr(ctx, "load snapshot"); err != nil {
		return nil, err
	}
	return decodeSnapshot(mf.Metadata, docs)
}

// versions returns stored version numbers, newest first.
func (s *BadgerStore) versions() ([]int, error) {
	seen := make(map[int]struct{})
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(badgerPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			rest := key[len(badgerPrefix):]
			for i := 0; i < len(rest); i++ {
				if rest[i] == ':' {
					if v, err := strconv.Atoi(rest[:i]); err == nil {
						seen[v] = struct{}{}
					}
					break
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out, nil
}

// List implements SnapshotStore.
func (s *BadgerStore) List(ctx context.Context) ([]knowledge.Metadata, error) {
	versions, err := s.versions()
	if err != nil {
		return nil, fmt.Errorf("scan versions: %w", err)
	}

	out := make([]knowledge.Metadata, 0, len(versions))
	err = s.db.View(func(txn *badger.Txn) error {
		for _, v := range versions {
			if err := ctxErr(ctx, "list versions"); err != nil {
				return err
			}
			raw, err := readValue(txn, badgerKey(v, ManifestFile))
			if err != nil {
				continue
			}
			var mf manifest
			if err := json.Unmarshal(raw, &mf); err != nil {
				continue
			}
			out = append(out, mf.Metadata)
		}
		return nil
	})
	return out, err
}

// Prune implements SnapshotStore. The current version is never removed.
func (s *BadgerStore) Prune(_ context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}
	versions, err := s.versions()
	if err != nil {
		return fmt.Errorf("scan versions: %w", err)
	}
	if len(versions) <= keep {
		return nil
	}

	return s.db.Update(func(txn *badger.Txn) error {
		current, err := readCurrent(txn)
		if err != nil {
			return err
		}
		for _, v := range versions[keep:] {
			if v == current {
				continue
			}
			for _, name := range []string{AssociationsFile, PopularityFile, NamesFile, ManifestFile} {
				if err := txn.Delete(badgerKey(v, name)); err != nil {
					return fmt.Errorf("delete version %d: %w", v, err)
				}
			}
		}
		return nil
	})
}

// Close closes the database if the store opened it.
func (s *BadgerStore) Close() error {
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
