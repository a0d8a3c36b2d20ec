// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"context"
	"net/http"
	"time"
)

// pingTimeout bounds the readiness database check.
const pingTimeout = 2 * time.Second

// HealthLive handles liveness probe requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of dependencies
//
// @Summary Kubernetes liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Service is alive"
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style)
// Returns 200 OK only when knowledge is loaded and the database answers.
//
// @Summary Kubernetes readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} APIResponse "Service is ready"
// @Failure 503 {object} APIResponse "Service is not ready"
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	knowledgeReady := h.recommender.IsReady()

	dbConnected := true
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		dbConnected = h.db.Ping(ctx) == nil
		cancel()
	}

	ready := knowledgeReady && dbConnected
	statusCode := http.StatusOK
	if !ready {
		statusCode = http.StatusServiceUnavailable
	}

	rw := NewResponseWriter(w, r)
	rw.writeJSON(statusCode, &APIResponse{
		Success: ready,
		Data: map[string]interface{}{
			"ready":             ready,
			"knowledgeReady":    knowledgeReady,
			"databaseConnected": dbConnected,
			"uptime":            time.Since(h.startTime).Seconds(),
		},
		Meta: rw.meta(),
	})
}
