// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

// currentFile names the pointer file holding the live version number.
const currentFile = "CURRENT"

// DefaultKeepVersions is how many versions Publish retains.
const DefaultKeepVersions = 5

// FileStore keeps each snapshot version in its own directory:
//
//	{baseDir}/v{N}/product-associations.json
//	{baseDir}/v{N}/product-popularity.json
//	{baseDir}/v{N}/product-names.json
//	{baseDir}/v{N}/manifest.json
//	{baseDir}/CURRENT
//
// A version directory is fully written under a temporary name and renamed
// into place before CURRENT is replaced, so readers never see a partial
// version. When no version exists, Load falls back to the three documents
// placed directly in baseDir (unversioned exports).
type FileStore struct {
	baseDir string
	keep    int
	logger  zerolog.Logger

	mu     sync.Mutex
	latest int
}

// NewFileStore creates a file store rooted at baseDir. keep <= 0 uses
// DefaultKeepVersions.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFileStore(baseDir string, keep int, logger zerolog.Logger) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for snapshot storage
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	if keep <= 0 {
		keep = DefaultKeepVersions
	}

	s := &FileStore{
		baseDir: baseDir,
		keep:    keep,
		logger:  logger.With().Str("component", "snapshot_file_store").Logger(),
	}

	versions, err := s.scanVersions()
	if err != nil {
		return nil, fmt.Errorf("scan existing versions: %w", err)
	}
	if len(versions) > 0 {
		s.latest = versions[0]
	}
	return s, nil
}

// parseVersionDir extracts N from a directory named "v{N}".
func parseVersionDir(name string) (int, bool) {
	if !strings.HasPrefix(name, "v") {
		return 0, false
	}
	v, err := strconv.Atoi(name[1:])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// scanVersions returns complete version numbers, newest first.
func (s *FileStore) scanVersions() ([]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	var versions []int
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		v, ok := parseVersionDir(entry.Name())
		if !ok {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.baseDir, entry.Name(), ManifestFile)); err != nil {
			continue
		}
		versions = append(versions, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

func (s *FileStore) versionDir(version int) string {
	return filepath.Join(s.baseDir, "v"+strconv.Itoa(version))
}

// maxPublishAttempts bounds how often Publish moves past a version
// number another writer installed first.
const maxPublishAttempts = 16

// syncLatestLocked folds versions written by other processes sharing
// baseDir into s.latest. Callers hold s.mu.
func (s *FileStore) syncLatestLocked() error {
	versions, err := s.scanVersions()
	if err != nil {
		return fmt.Errorf("scan versions: %w", err)
	}
	if len(versions) > 0 && versions[0] > s.latest {
		s.latest = versions[0]
	}
	current, err := s.currentVersion()
	if err != nil {
		return err
	}
	if current > s.latest {
		s.latest = current
	}
	return nil
}

// Publish writes snap as the next version and points CURRENT at it.
// Another process publishing into the same directory (cmd/builder next
// to the server) is tolerated: the version number is taken from disk and
// a name collision moves on to the following number.
func (s *FileStore) Publish(ctx context.Context, snap *knowledge.Snapshot) (knowledge.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := encodeSnapshot(snap)
	if err != nil {
		return knowledge.Metadata{}, err
	}

	if err := s.syncLatestLocked(); err != nil {
		return knowledge.Metadata{}, err
	}

	meta := snap.Metadata()
	meta.Checksum = docs.checksum()

	if err := ctxErr(ctx, "publish snapshot"); err != nil {
		return knowledge.Metadata{}, err
	}

	tmpDir, err := os.MkdirTemp(s.baseDir, ".publish-")
	if err != nil {
		return knowledge.Metadata{}, fmt.Errorf("create staging directory: %w", err)
	}
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.RemoveAll(tmpDir) //nolint:errcheck // best-effort cleanup of staging directory
		}
	}()

	for name, data := range map[string][]byte{
		AssociationsFile: docs.associations,
		PopularityFile:   docs.popularity,
		NamesFile:        docs.names,
	} {
		if err := writeFileSync(filepath.Join(tmpDir, name), data); err != nil {
			return knowledge.Metadata{}, fmt.Errorf("write %s: %w", name, err)
		}
	}

	meta.Version = s.latest + 1
	for attempt := 1; ; attempt++ {
		if err := ctxErr(ctx, "publish snapshot"); err != nil {
			return knowledge.Metadata{}, err
		}

		mf, err := json.MarshalIndent(manifest{Metadata: meta, Files: docs.sizes()}, "", "  ")
		if err != nil {
			return knowledge.Metadata{}, fmt.Errorf("encode manifest: %w", err)
		}
		if err := writeFileSync(filepath.Join(tmpDir, ManifestFile), mf); err != nil {
			return knowledge.Metadata{}, fmt.Errorf("write %s: %w", ManifestFile, err)
		}

		err = os.Rename(tmpDir, s.versionDir(meta.Version))
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) || attempt >= maxPublishAttempts {
			return knowledge.Metadata{}, fmt.Errorf("install version directory: %w", err)
		}
		s.logger.Debug().Int("version", meta.Version).Msg("version taken by another writer, retrying")
		meta.Version++
	}
	cleanup = false

	if err := s.writeCurrent(meta.Version); err != nil {
		return knowledge.Metadata{}, err
	}
	s.latest = meta.Version

	s.logger.Info().
		Int("version", meta.Version).
		Str("checksum", meta.Checksum).
		Msg("snapshot published")

	if err := s.pruneLocked(s.keep); err != nil {
		s.logger.Warn().Err(err).Msg("failed to prune old snapshot versions")
	}

	return meta, nil
}

// writeCurrent atomically replaces the CURRENT pointer.
func (s *FileStore) writeCurrent(version int) error {
	f, err := os.CreateTemp(s.baseDir, ".current-")
	if err != nil {
		return fmt.Errorf("create pointer file: %w", err)
	}
	tmp := f.Name()

	if _, err := f.WriteString(strconv.Itoa(version) + "\n"); err != nil {
		_ = f.Close()      //nolint:errcheck // already failing
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write pointer file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()      //nolint:errcheck // already failing
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("sync pointer file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close pointer file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.baseDir, currentFile)); err != nil {
		_ = os.Remove(tmp) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("install pointer file: %w", err)
	}
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640) //nolint:gosec // path is built from trusted names
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close() //nolint:errcheck // already failing
		return err
	}
	return f.Close()
}

// currentVersion reads CURRENT, falling back to the newest complete version.
func (s *FileStore) currentVersion() (int, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, currentFile)) //nolint:gosec // path is built from trusted names
	if err == nil {
		v, perr := strconv.Atoi(strings.TrimSpace(string(data)))
		if perr != nil || v <= 0 {
			return 0, fmt.Errorf("invalid pointer file contents %q", strings.TrimSpace(string(data)))
		}
		return v, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("read pointer file: %w", err)
	}

	versions, err := s.scanVersions()
	if err != nil {
		return 0, fmt.Errorf("scan versions: %w", err)
	}
	if len(versions) == 0 {
		return 0, nil
	}
	return versions[0], nil
}

// Load reads the current version. It implements knowledge.Source.
func (s *FileStore) Load(ctx context.Context) (*knowledge.Snapshot, error) {
	version, err := s.currentVersion()
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return s.loadUnversioned(ctx)
	}
	return s.LoadVersion(ctx, version)
}

// LoadVersion reads and verifies a specific version.
func (s *FileStore) LoadVersion(ctx context.Context, version int) (*knowledge.Snapshot, error) {
	dir := s.versionDir(version)

	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile)) //nolint:gosec // path is built from trusted names
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("version %d: %w", version, ErrNoSnapshot)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var mf manifest
	if err := json.Unmarshal(raw, &mf); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	docs, err := readDocuments(ctx, dir, true)
	if err != nil {
		return nil, fmt.Errorf("version %d: %w", version, err)
	}
	snap, err := decodeSnapshot(mf.Metadata, docs)
	if err != nil {
		return nil, fmt.Errorf("version %d: %w", version, err)
	}
	return snap, nil
}

// loadUnversioned reads documents placed directly in baseDir.
func (s *FileStore) loadUnversioned(ctx context.Context) (*knowledge.Snapshot, error) {
	docs, err := readDocuments(ctx, s.baseDir, false)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, err
	}

	var builtAt time.Time
	if info, err := os.Stat(filepath.Join(s.baseDir, AssociationsFile)); err == nil {
		builtAt = info.ModTime().UTC()
	}
	return decodeSnapshot(knowledge.Metadata{BuildID: "unversioned", BuiltAt: builtAt}, docs)
}

func readDocuments(ctx context.Context, dir string, requireNames bool) (documents, error) {
	var docs documents
	var err error

	if docs.associations, err = os.ReadFile(filepath.Join(dir, AssociationsFile)); err != nil { //nolint:gosec // trusted path
		return docs, fmt.Errorf("read associations: %w", err)
	}
	if err := ctxErr(ctx, "read documents"); err != nil {
		return docs, err
	}
	if docs.popularity, err = os.ReadFile(filepath.Join(dir, PopularityFile)); err != nil { //nolint:gosec // trusted path
		return docs, fmt.Errorf("read popularity: %w", err)
	}
	if err := ctxErr(ctx, "read documents"); err != nil {
		return docs, err
	}
	docs.names, err = os.ReadFile(filepath.Join(dir, NamesFile)) //nolint:gosec // trusted path
	if err != nil && (requireNames || !errors.Is(err, fs.ErrNotExist)) {
		return docs, fmt.Errorf("read names: %w", err)
	}
	return docs, nil
}

// LatestVersion returns the newest published version, including versions
// written by other processes.
func (s *FileStore) LatestVersion() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncLatestLocked(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to rescan snapshot versions")
	}
	return s.latest, s.latest > 0
}

// List returns metadata of all complete versions, newest first.
func (s *FileStore) List(ctx context.Context) ([]knowledge.Metadata, error) {
	versions, err := s.scanVersions()
	if err != nil {
		return nil, fmt.Errorf("scan versions: %w", err)
	}

	out := make([]knowledge.Metadata, 0, len(versions))
	for _, v := range versions {
		if err := ctxErr(ctx, "list versions"); err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(filepath.Join(s.versionDir(v), ManifestFile)) //nolint:gosec // trusted path
		if err != nil {
			continue
		}
		var mf manifest
		if err := json.Unmarshal(raw, &mf); err != nil {
			continue
		}
		out = append(out, mf.Metadata)
	}
	return out, nil
}

// Prune removes all but the newest keep versions. The current version is
// never removed.
func (s *FileStore) Prune(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(keep)
}

func (s *FileStore) pruneLocked(keep int) error {
	if keep < 1 {
		keep = 1
	}
	versions, err := s.scanVersions()
	if err != nil {
		return fmt.Errorf("scan versions: %w", err)
	}
	current, err := s.currentVersion()
	if err != nil {
		return err
	}

	for i := keep; i < len(versions); i++ {
		if versions[i] == current {
			continue
		}
		if err := os.RemoveAll(s.versionDir(versions[i])); err != nil {
			return fmt.Errorf("remove version %d: %w", versions[i], err)
		}
		s.logger.Debug().Int("version", versions[i]).Msg("pruned snapshot version")
	}
	return nil
}

// Close implements SnapshotStore.
func (s *FileStore) Close() error {
	return nil
}
