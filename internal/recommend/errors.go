// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package recommend

import (
	"errors"
	"fmt"

	"github.com/tomtom215/basketrec/internal/recommend/knowledge"
)

var (
	// ErrKnowledgeNotAvailable means no snapshot could be loaded: the builder
	// never ran, or the persisted output is missing, corrupt or timed out.
	ErrKnowledgeNotAvailable = knowledge.ErrNotAvailable

	// ErrInvalidInput means a required query field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamLookup means an order or product repository call failed.
	ErrUpstreamLookup = errors.New("upstream lookup failed")
)

func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
