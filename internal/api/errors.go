// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/basketrec/internal/database"
	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/recommend"
	"github.com/tomtom215/basketrec/internal/recommend/builder"
)

// statusForError maps service errors to an HTTP status and error code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidInput):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, recommend.ErrKnowledgeNotAvailable):
		return http.StatusServiceUnavailable, ErrCodeKnowledgeNotAvailable
	case errors.Is(err, database.ErrProductNotFound):
		return http.StatusNotFound, ErrCodeNotFound
	case errors.Is(err, builder.ErrBuildInProgress):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, recommend.ErrUpstreamLookup):
		return http.StatusBadGateway, ErrCodeUpstreamFailed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// respondServiceError writes err as an envelope. Client errors echo the
// error text; server errors are logged and answered generically.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)

	message := err.Error()
	switch status {
	case http.StatusServiceUnavailable:
		message = "Recommendation knowledge is not available"
	case http.StatusBadGateway:
		message = "Upstream repository unavailable"
	case http.StatusGatewayTimeout:
		message = "Request timed out"
	case http.StatusInternalServerError:
		message = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		logging.CtxErr(r.Context(), err).Int("status", status).Msg("request failed")
	}
	NewResponseWriter(w, r).Error(status, code, message)
}
