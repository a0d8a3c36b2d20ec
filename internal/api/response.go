// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/middleware"
)

// APIResponse is the envelope of every API response.
type APIResponse struct {
	Success bool `json:"success"`

	// Count is the number of items in Data for list responses.
	Count *int `json:"count,omitempty"`

	Data interface{} `json:"data"`

	// SourceProduct names the query product of a product recommendation.
	SourceProduct *ProductRef `json:"sourceProduct,omitempty"`

	Message string    `json:"message,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`

	RequestID string `json:"requestId,omitempty"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	RequestID  string    `json:"requestId,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMs int64     `json:"durationMs"`

	// KnowledgeVersion is the snapshot version that answered the query.
	KnowledgeVersion int `json:"knowledgeVersion,omitempty"`

	// Fallback is set when results came from popularity ranking.
	Fallback bool `json:"fallback,omitempty"`
}

// ProductRef identifies a product by id and name.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest            = "BAD_REQUEST"
	ErrCodeValidationFailed      = "VALIDATION_ERROR"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeForbidden             = "FORBIDDEN"
	ErrCodeNotFound              = "NOT_FOUND"
	ErrCodeConflict              = "CONFLICT"
	ErrCodeTooManyRequests       = "TOO_MANY_REQUESTS"
	ErrCodeInternalError         = "INTERNAL_ERROR"
	ErrCodeKnowledgeNotAvailable = "KNOWLEDGE_NOT_AVAILABLE"
	ErrCodeUpstreamFailed        = "UPSTREAM_UNAVAILABLE"
	ErrCodeTimeout               = "TIMEOUT"
)

// ResponseWriter writes enveloped responses for one request.
type ResponseWriter struct {
	w         http.ResponseWriter
	r         *http.Request
	startTime time.Time
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{
		w:         w,
		r:         r,
		startTime: time.Now(),
	}
}

func (rw *ResponseWriter) meta() *APIMeta {
	return &APIMeta{
		RequestID:  middleware.GetRequestID(rw.r.Context()),
		Timestamp:  time.Now().UTC(),
		DurationMs: time.Since(rw.startTime).Milliseconds(),
	}
}

// Success writes a 200 response with data.
func (rw *ResponseWriter) Success(data interface{}) {
	rw.writeJSON(http.StatusOK, &APIResponse{
		Success: true,
		Data:    data,
		Meta:    rw.meta(),
	})
}

// Message writes a 200 response carrying only a message and optional data.
func (rw *ResponseWriter) Message(message string, data interface{}) {
	rw.writeJSON(http.StatusOK, &APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    rw.meta(),
	})
}

// List writes a 200 response with count set to count. modify, when not
// nil, may add fields to the envelope.
func (rw *ResponseWriter) List(data interface{}, count int, modify func(*APIResponse)) {
	resp := &APIResponse{
		Success: true,
		Count:   &count,
		Data:    data,
		Meta:    rw.meta(),
	}
	if modify != nil {
		modify(resp)
	}
	rw.writeJSON(http.StatusOK, resp)
}

// Error writes an error response.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details interface{}) {
	meta := rw.meta()
	rw.writeJSON(statusCode, &APIResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: meta.RequestID,
		},
		Meta: meta,
	})
}

func (rw *ResponseWriter) BadRequest(message string) {
	rw.Error(http.StatusBadRequest, ErrCodeBadRequest, message)
}

func (rw *ResponseWriter) NotFound(message string) {
	rw.Error(http.StatusNotFound, ErrCodeNotFound, message)
}

func (rw *ResponseWriter) Conflict(message string) {
	rw.Error(http.StatusConflict, ErrCodeConflict, message)
}

func (rw *ResponseWriter) InternalError(message string) {
	rw.Error(http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ValidationError writes a 400 with per-field details.
func (rw *ResponseWriter) ValidationError(message string, details interface{}) {
	rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeValidationFailed, message, details)
}

func (rw *ResponseWriter) writeJSON(statusCode int, data interface{}) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(data); err != nil {
		logging.CtxErr(rw.r.Context(), err).Msg("failed to encode JSON response")
	}
}

// WriteError writes an error envelope. It satisfies auth.ErrorWriter.
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string) {
	NewResponseWriter(w, r).Error(statusCode, code, message)
}
