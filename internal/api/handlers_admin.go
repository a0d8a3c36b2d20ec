// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/basketrec/internal/auth"
	"github.com/tomtom215/basketrec/internal/logging"
	"github.com/tomtom215/basketrec/internal/recommend"
)

// RebuildResult summarizes a rebuild for the API.
type RebuildResult struct {
	Version       int              `json:"version"`
	BuildID       string           `json:"buildId"`
	OrdersScanned int              `json:"ordersScanned"`
	OrdersUsed    int              `json:"ordersUsed"`
	Products      int              `json:"products"`
	DurationMs    int64            `json:"durationMs"`
	Status        recommend.Status `json:"status"`
}

func (h *Handler) auditAdmin(r *http.Request, event string, err error) {
	if h.audit == nil {
		return
	}
	e := &logging.AuditEvent{
		Event:   event,
		Method:  r.Method,
		Path:    r.URL.Path,
		IP:      auth.ClientIP(r),
		Success: err == nil,
	}
	if subject := auth.GetAuthSubject(r.Context()); subject != nil {
		e.Subject = subject.ID
		e.Role = strings.Join(subject.Roles, ",")
	}
	if err != nil {
		e.Error = err.Error()
	}
	h.audit.Log(e)
}

// Refresh handles POST /api/v1/recommend/refresh
//
// @Summary Reload recommendation knowledge
// @Description Loads the latest published snapshot. On failure the previous snapshot stays live. Requires the operator role.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=recommend.Status} "Knowledge refreshed"
// @Failure 401 {object} APIResponse "Not authenticated"
// @Failure 403 {object} APIResponse "Insufficient permissions"
// @Failure 503 {object} APIResponse "No snapshot available"
// @Router /recommend/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	err := h.recommender.Refresh(ctx)
	h.auditAdmin(r, "refresh", err)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	NewResponseWriter(w, r).Message("Recommendation knowledge refreshed successfully", h.recommender.Status())
}

// Rebuild handles POST /api/v1/recommend/rebuild
//
// @Summary Rebuild recommendation knowledge
// @Description Runs the association builder over current orders, publishes a new snapshot and loads it. Only one rebuild runs at a time. Requires the admin role.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} APIResponse{data=RebuildResult} "Rebuilt and refreshed"
// @Failure 401 {object} APIResponse "Not authenticated"
// @Failure 403 {object} APIResponse "Insufficient permissions"
// @Failure 409 {object} APIResponse "Rebuild already running"
// @Failure 503 {object} APIResponse "Builder not configured"
// @Router /recommend/rebuild [post]
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	if h.rebuilder == nil {
		NewResponseWriter(w, r).Error(http.StatusServiceUnavailable, ErrCodeInternalError, "Builder is not configured")
		return
	}

	// The build finishes even if the client goes away; the builder bounds
	// it with its own timeout.
	ctx := context.WithoutCancel(r.Context())

	res, err := h.rebuilder.Run(ctx)
	if err != nil {
		h.auditAdmin(r, "rebuild", err)
		respondServiceError(w, r, err)
		return
	}

	rctx, cancel := context.WithTimeout(ctx, h.cfg.RequestTimeout)
	defer cancel()
	err = h.recommender.Refresh(rctx)
	h.auditAdmin(r, "rebuild", err)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	NewResponseWriter(w, r).Message("Recommendation knowledge rebuilt successfully", RebuildResult{
		Version:       res.Metadata.Version,
		BuildID:       res.Metadata.BuildID,
		OrdersScanned: res.Stats.OrdersScanned,
		OrdersUsed:    res.Stats.OrdersUsed,
		Products:      res.Stats.Products,
		DurationMs:    res.Duration.Milliseconds(),
		Status:        h.recommender.Status(),
	})
}

// StatusResponse is the body of GET /recommend/status.
type StatusResponse struct {
	recommend.Status
	Message string  `json:"message"`
	AgeSecs float64 `json:"ageSeconds,omitempty"`
}

// Status handles GET /api/v1/recommend/status
//
// @Summary Recommendation readiness
// @Description Reports whether knowledge is loaded, its version and build time. Never loads or refreshes anything.
// @Tags Recommend
// @Produce json
// @Success 200 {object} APIResponse{data=StatusResponse} "Status"
// @Router /recommend/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.recommender.Status()
	resp := StatusResponse{Status: st, Message: "Recommendation system is operational"}
	if !st.Ready {
		resp.Message = "Knowledge not loaded. Run the builder or POST /recommend/refresh."
	}
	if !st.BuiltAt.IsZero() {
		resp.AgeSecs = time.Since(st.BuiltAt).Seconds()
	}

	rw := NewResponseWriter(w, r)
	rw.writeJSON(http.StatusOK, &APIResponse{
		Success: st.Ready,
		Data:    resp,
		Meta:    rw.meta(),
	})
}
