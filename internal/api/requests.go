// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/basketrec/internal/recommend"
	"github.com/tomtom215/basketrec/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ProductRequest is the body of POST /recommend/product.
type ProductRequest struct {
	ProductID  string   `json:"productId" validate:"required,identifier,max=128"`
	Limit      int      `json:"limit"`
	ExcludeIDs []string `json:"excludeIds" validate:"max=500,dive,identifier,max=128"`
}

// CartRequest is the body of POST /recommend/cart.
type CartRequest struct {
	CartItems []recommend.CartItem `json:"cartItems" validate:"required,max=500,dive"`
	Limit     int                  `json:"limit"`
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes
// the error response and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	rw := NewResponseWriter(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			rw.BadRequest("Request body is required")
		case errors.As(err, &maxErr):
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large")
		default:
			rw.BadRequest("Invalid JSON body")
		}
		return false
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.ValidationError(verr.Error(), verr.Details())
		return false
	}
	return true
}

// parseLimit reads the limit query parameter. Absent means 0, which the
// service turns into its default.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		verr := &validation.RequestValidationError{Fields: []validation.FieldError{
			{Field: "limit", Tag: "numeric", Message: "limit must be an integer"},
		}}
		NewResponseWriter(w, r).ValidationError(verr.Error(), verr.Details())
		return 0, false
	}
	return limit, true
}
