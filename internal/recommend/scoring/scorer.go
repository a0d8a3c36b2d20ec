// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package scoring converts raw co-purchase statistics into comparable scores.
//
// The score of a candidate is linear in its association count and
// logarithmic in its popularity:
//
//	score = associationCount*AssociationWeight + ln(popularity+1)*PopularityWeight
//
// Association strength dominates; popularity acts as a damped bonus that
// separates otherwise-equal candidates. All functions are pure.
package scoring

import (
	"fmt"
	"math"
)

const (
	// AssociationWeight multiplies the co-occurrence count.
	AssociationWeight = 10.0

	// PopularityWeight multiplies the log-damped popularity.
	PopularityWeight = 2.0
)

// Weights holds the two scoring coefficients.
type Weights struct {
	// Association multiplies the co-occurrence count.
	Association float64 `json:"association" koanf:"association"`

	// Popularity multiplies ln(popularity+1).
	Popularity float64 `json:"popularity" koanf:"popularity"`
}

// DefaultWeights returns the calibrated weights (10, 2).
func DefaultWeights() Weights {
	return Weights{
		Association: AssociationWeight,
		Popularity:  PopularityWeight,
	}
}

// Validate rejects weights that would break score monotonicity.
func (w Weights) Validate() error {
	if w.Association <= 0 || math.IsNaN(w.Association) || math.IsInf(w.Association, 0) {
		return fmt.Errorf("association weight must be positive and finite, got %v", w.Association)
	}
	if w.Popularity < 0 || math.IsNaN(w.Popularity) || math.IsInf(w.Popularity, 0) {
		return fmt.Errorf("popularity weight must be non-negative and finite, got %v", w.Popularity)
	}
	return nil
}

// Scorer applies a fixed set of weights.
type Scorer struct {
	weights Weights
}

// New creates a Scorer. Invalid weights fall back to DefaultWeights.
func New(w Weights) Scorer {
	if w.Validate() != nil {
		w = DefaultWeights()
	}
	return Scorer{weights: w}
}

// Default returns a Scorer using DefaultWeights.
func Default() Scorer {
	return Scorer{weights: DefaultWeights()}
}

// Weights returns the active weights.
func (s Scorer) Weights() Weights {
	return s.weights
}

// Score combines an association count and a popularity into one value.
func (s Scorer) Score(associationCount, popularity int) float64 {
	return s.AssociationTerm(associationCount, 1) + s.PopularityBonus(popularity)
}

// AssociationTerm returns count*AssociationWeight*quantity.
func (s Scorer) AssociationTerm(associationCount, quantity int) float64 {
	return float64(associationCount) * s.weights.Association * float64(quantity)
}

// PopularityBonus returns ln(popularity+1)*PopularityWeight, or 0 when
// popularity is not positive.
func (s Scorer) PopularityBonus(popularity int) float64 {
	if popularity <= 0 {
		return 0
	}
	return math.Log(float64(popularity)+1) * s.weights.Popularity
}

// Score scores with the default weights.
func Score(associationCount, popularity int) float64 {
	return Default().Score(associationCount, popularity)
}
