// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package knowledge holds the in-memory association knowledge that the
// recommendation service reads.
//
// A Store owns exactly one live Snapshot at a time. Readers load it through
// an atomic pointer and never observe a partially loaded state: a refresh
// parses the complete replacement first and then swaps the pointer. A failed
// refresh leaves the previous snapshot live.
//
// # State Machine
//
//	Unloaded --load--> Loading --ok--> Loaded
//	Loading  --fail--> Unloaded (no prior snapshot)
//	Loaded   --refresh--> Loading --ok|fail--> Loaded
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotAvailable is returned when no snapshot can be served.
var ErrNotAvailable = errors.New("knowledge not available")

// DefaultLoadTimeout bounds a single load from the Source.
const DefaultLoadTimeout = 30 * time.Second

// Source produces complete snapshots from persistent storage.
type Source interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (*Snapshot, error)

// Load calls f(ctx).
func (f SourceFunc) Load(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// State is the load state of a Store.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateLoaded
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// LoadObserver is notified after every load attempt.
type LoadObserver func(snap *Snapshot, duration time.Duration, err error)

// Options configures a Store.
type Options struct {
	// LoadTimeout bounds each load. Zero uses DefaultLoadTimeout.
	LoadTimeout time.Duration

	// Observer, if set, is called after each load attempt.
	Observer LoadObserver
}

// Store serves the current snapshot and coordinates loads.
// It is safe for concurrent use.
type Store struct {
	source   Source
	timeout  time.Duration
	observer LoadObserver
	logger   zerolog.Logger

	current atomic.Pointer[Snapshot]
	state   atomic.Int32

	// loadMu serializes initial loads and refreshes.
	loadMu sync.Mutex

	errMu      sync.RWMutex
	lastErr    error
	lastLoaded time.Time
}

// NewStore creates an unloaded Store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(source Source, opts Options, logger zerolog.Logger) *Store {
	timeout := opts.LoadTimeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}
	return &Store{
		source:   source,
		timeout:  timeout,
		observer: opts.Observer,
		logger:   logger.With().Str("component", "knowledge_store").Logger(),
	}
}

// Init performs the initial blocking load. It is a no-op when a snapshot
// is already loaded.
func (s *Store) Init(ctx context.Context) error {
	return s.EnsureLoaded(ctx)
}

// EnsureLoaded loads the snapshot if none is live. Concurrent callers wait
// for the single in-flight load and share its outcome.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	if s.current.Load() != nil {
		return nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	if s.current.Load() != nil {
		return nil
	}
	return s.loadLocked(ctx)
}

// Refresh unconditionally reloads from the Source. On failure the previous
// snapshot, if any, stays live and the error is returned.
func (s *Store) Refresh(ctx context.Context) error {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) error {
	start := time.Now()
	previous := s.current.Load()
	s.state.Store(int32(StateLoading))

	snap, err := s.loadWithTimeout(ctx)
	if err == nil {
		err = snap.Validate()
		if err != nil {
			err = fmt.Errorf("malformed snapshot: %w", err)
		}
	}

	elapsed := time.Since(start)
	if s.observer != nil {
		s.observer(snap, elapsed, err)
	}

	if err != nil {
		if previous != nil {
			s.state.Store(int32(StateLoaded))
			s.logger.Warn().Err(err).
				Int("live_version", previous.Metadata().Version).
				Msg("refresh failed, keeping previous snapshot")
		} else {
			s.state.Store(int32(StateUnloaded))
			s.logger.Error().Err(err).Msg("initial knowledge load failed")
		}
		s.setLastErr(err)
		return fmt.Errorf("%w: %w", ErrNotAvailable, err)
	}

	s.current.Store(snap)
	s.state.Store(int32(StateLoaded))
	s.setLastErr(nil)

	meta := snap.Metadata()
	s.logger.Info().
		Int("version", meta.Version).
		Str("build_id", meta.BuildID).
		Int("products", meta.ProductCount).
		Dur("duration", elapsed).
		Msg("knowledge snapshot loaded")
	return nil
}

type loadResult struct {
	snap *Snapshot
	err  error
}

// loadWithTimeout returns when either the Source completes or the timeout
// expires, even if the Source ignores its context.
func (s *Store) loadWithTimeout(parent context.Context) (*Snapshot, error) {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	done := make(chan loadResult, 1)
	go func() {
		snap, err := s.source.Load(ctx)
		done <- loadResult{snap: snap, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, fmt.Errorf("load snapshot: %w", r.err)
		}
		if r.snap == nil {
			return nil, errors.New("load snapshot: source returned no snapshot")
		}
		return r.snap, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("load snapshot: %w", ctx.Err())
	}
}

func (s *Store) setLastErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	s.lastErr = err
	if err == nil {
		s.lastLoaded = time.Now()
	}
}

// Snapshot returns the live snapshot or nil.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// IsReady reports whether a snapshot is live. It never triggers a load.
func (s *Store) IsReady() bool {
	return s.current.Load() != nil
}

// State returns the current load state.
func (s *Store) State() State {
	return State(s.state.Load())
}

// LastError returns the error of the most recent load attempt, if it failed.
func (s *Store) LastError() error {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	return s.lastErr
}

// LastLoaded returns when the live snapshot was swapped in.
func (s *Store) LastLoaded() time.Time {
	s.errMu.RLock()
	defer s.errMu.RUnlock()
	return s.lastLoaded
}

// Associations returns the related list of productID from the live snapshot.
func (s *Store) Associations(productID string) RelatedList {
	if snap := s.current.Load(); snap != nil {
		return snap.Related(productID)
	}
	return nil
}

// Popularity returns the popularity of productID from the live snapshot.
func (s *Store) Popularity(productID string) int {
	if snap := s.current.Load(); snap != nil {
		return snap.Popularity(productID)
	}
	return 0
}

// Name returns the cached name of productID, or UnknownName.
func (s *Store) Name(productID string) string {
	if snap := s.current.Load(); snap != nil {
		return snap.Name(productID)
	}
	return UnknownName
}

// Products returns all known product ids of the live snapshot.
func (s *Store) Products() []string {
	if snap := s.current.Load(); snap != nil {
		return snap.Products()
	}
	return nil
}
