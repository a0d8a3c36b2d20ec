// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/basketrec/internal/logging"
	ws "github.com/tomtom215/basketrec/internal/websocket"
)

// SetStatusHub enables the knowledge status stream.
func (h *Handler) SetStatusHub(hub *ws.Hub) {
	h.hub = hub
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkStreamOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkStreamOrigin admits browser origins listed in AllowedOrigins. A
// missing Origin header is rejected.
func (h *Handler) checkStreamOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Ctx(r.Context()).Warn().Msg("status stream rejected: missing Origin header")
		return false
	}
	if slices.Contains(h.cfg.AllowedOrigins, "*") || slices.Contains(h.cfg.AllowedOrigins, origin) {
		return true
	}
	logging.Ctx(r.Context()).Warn().Str("origin", origin).Msg("status stream rejected: origin not allowed")
	return false
}

// StatusStream handles GET /api/v1/ws/knowledge
//
// @Summary Knowledge status stream
// @Description Upgrades to a WebSocket that sends the current status, then one frame per snapshot load attempt.
// @Tags Recommend
// @Success 101 {string} string "Switching Protocols"
// @Failure 403 {string} string "Origin not allowed"
// @Failure 503 {object} APIResponse "Status stream unavailable"
// @Router /ws/knowledge [get]
func (h *Handler) StatusStream(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		WriteError(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Status stream unavailable")
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("status stream upgrade failed")
		return
	}

	h.hub.Connect(conn, ws.Message{Type: ws.MessageTypeStatus, Data: h.recommender.Status()})
}
