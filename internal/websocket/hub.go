// Basketrec - Market Basket Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/basketrec

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Message types sent to status stream clients.
const (
	MessageTypeStatus              = "status"
	MessageTypeKnowledgeLoaded     = "knowledge_loaded"
	MessageTypeKnowledgeLoadFailed = "knowledge_load_failed"
	MessageTypePing                = "ping"
	MessageTypePong                = "pong"
)

// broadcastBuffer is how many messages may queue while the hub loop is busy.
const broadcastBuffer = 64

// Message is one frame on the wire.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// KnowledgeEvent describes a snapshot load attempt.
type KnowledgeEvent struct {
	Version    int       `json:"version,omitempty"`
	Products   int       `json:"products,omitempty"`
	BuiltAt    time.Time `json:"builtAt"`
	DurationMs int64     `json:"durationMs"`
	Error      string    `json:"error,omitempty"`
	Timestamp  string    `json:"timestamp"`
}

// Hub fans knowledge events out to connected status stream clients.
type Hub struct {
	clients   map[*Client]struct{}
	broadcast chan Message
	mu        sync.RWMutex
	logger    zerolog.Logger
}

// NewHub creates a Hub. Serve must run for broadcasts to be delivered.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:   make(map[*Client]struct{}),
		broadcast: make(chan Message, broadcastBuffer),
		logger:    logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// Serve delivers broadcasts until ctx is canceled, then closes every
// client. It implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		// Shutdown takes priority over pending broadcasts.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Connect registers a client for conn and starts its pumps. initial
// messages are queued ahead of any broadcast.
func (h *Hub) Connect(conn *websocket.Conn, initial ...Message) *Client {
	c := newClient(h, conn)
	for _, msg := range initial {
		c.send <- msg
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug().Uint64("client", c.id).Int("total_clients", total).Msg("websocket client connected")

	c.start()
	return c
}

// unregister removes c and closes its send channel once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Debug().Uint64("client", c.id).Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// BroadcastJSON queues a message for every client. It never blocks; a full
// queue drops the message.
func (h *Hub) BroadcastJSON(messageType string, data interface{}) {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
	default:
		h.logger.Warn().Str("message_type", messageType).Msg("broadcast queue full, dropping message")
	}
}

// BroadcastKnowledgeLoad announces a snapshot load attempt.
func (h *Hub) BroadcastKnowledgeLoad(version, products int, builtAt time.Time, d time.Duration, err error) {
	ev := KnowledgeEvent{
		DurationMs: d.Milliseconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		ev.Error = err.Error()
		h.BroadcastJSON(MessageTypeKnowledgeLoadFailed, ev)
		return
	}
	ev.Version, ev.Products, ev.BuiltAt = version, products, builtAt
	h.BroadcastJSON(MessageTypeKnowledgeLoaded, ev)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// sortedClients returns the clients in connection order. Caller holds mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// broadcastToClients delivers msg; clients whose queue is full are dropped.
func (h *Hub) broadcastToClients(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sortedClients() {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
			h.logger.Warn().Uint64("client", c.id).Msg("slow websocket client dropped")
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := h.sortedClients()
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}
	h.logger.Info().
		Str("reason", reason).
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}
