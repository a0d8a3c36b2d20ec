// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

// Package validation validates API request structs with
// go-playground/validator v10.
//
// A single validator instance is shared process-wide. Errors name fields by
// their JSON names, including the path into nested slices:
//
//	type cartRequest struct {
//	    Items []recommend.CartItem `json:"items" validate:"max=200,dive"`
//	    Limit int                  `json:"limit" validate:"gte=0,lte=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    // verr.Error(): "items[2].productId is required"
//	}
//
// The custom "identifier" rule accepts non-blank ids without whitespace, up
// to MaxProductIDLength bytes.
package validation
