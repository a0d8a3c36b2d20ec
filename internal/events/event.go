// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

// DefaultTopic carries snapshot publication announcements.
const DefaultTopic = "knowledge.published"

// ErrInvalidEvent is returned for payloads that cannot be applied.
var ErrInvalidEvent = errors.New("invalid event")

// SnapshotPublished announces that a new knowledge version was persisted.
type SnapshotPublished struct {
	EventID      string    `json:"event_id"`
	Version      int       `json:"version"`
	BuildID      string    `json:"build_id"`
	BuiltAt      time.Time `json:"built_at"`
	Checksum     string    `json:"checksum,omitempty"`
	ProductCount int       `json:"product_count"`
	Origin       string    `json:"origin,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
}

func newSnapshotPublished(eventID, origin string, meta knowledge.Metadata) *SnapshotPublished {
	return &SnapshotPublished{
		EventID:      eventID,
		Version:      meta.Version,
		BuildID:      meta.BuildID,
		BuiltAt:      meta.BuiltAt,
		Checksum:     meta.Checksum,
		ProductCount: meta.ProductCount,
		Origin:       origin,
		PublishedAt:  time.Now().UTC(),
	}
}

// Validate checks the fields a subscriber relies on.
func (e *SnapshotPublished) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("%w: event_id is required", ErrInvalidEvent)
	}
	if e.Version <= 0 {
		return fmt.Errorf("%w: version must be positive, got %d", ErrInvalidEvent, e.Version)
	}
	return nil
}

// Marshal validates and encodes the event.
func (e *SnapshotPublished) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshotPublished decodes and validates an event payload.
func UnmarshalSnapshotPublished(data []byte) (*SnapshotPublished, error) {
	var e SnapshotPublished
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}
