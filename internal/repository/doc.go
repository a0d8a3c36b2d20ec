// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package repository isolates the recommendation layers from the order and
// product stores.
//
// Every call runs through a sony/gobreaker circuit breaker. Failures, and
// calls rejected while a breaker is open, are returned wrapped in
// recommend.ErrUpstreamLookup so callers can degrade with errors.Is. A
// canceled context and a missing product are not failures.
//
// Breaker state is exported as the circuit_breaker_state gauge.
package repository
