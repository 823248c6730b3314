// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for websocket communication.
const (
	MessageTypeWatchlist = "watchlist"
	MessageTypePing      = "ping"
	MessageTypePong      = "pong"
)

// Message is the envelope for frames exchanged with clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// ErrHubStopped is returned by Attach when the hub is not running.
var ErrHubStopped = errors.New("websocket hub is not running")

// Hub tracks live connections per account and delivers frames to every
// connection of an account.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	total   int

	Register   chan *Client
	Unregister chan *Client

	runMu   sync.Mutex
	running chan struct{}
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Attach registers client with a running hub. It gives up when ctx is done.
func (h *Hub) Attach(ctx context.Context, client *Client) error {
	select {
	case h.Register <- client:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.stopped():
		return ErrHubStopped
	}
}

// unregister is called by the read pump; it never blocks a stopped hub.
func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.stopped():
		h.remove(client)
	}
}

// stopped returns a channel that is closed while the hub is not running.
func (h *Hub) stopped() <-chan struct{} {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	if h.running == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return h.running
}

// Running reports whether RunWithContext is active.
func (h *Hub) Running() bool {
	h.runMu.Lock()
	defer h.runMu.Unlock()
	return h.running != nil
}

// RunWithContext processes registrations until ctx is done, then closes
// every connection and returns ctx.Err(). The hub may be run again.
//
// Context cancellation is checked first, then lifecycle events.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.runMu.Lock()
	h.running = make(chan struct{})
	h.runMu.Unlock()

	defer func() {
		h.runMu.Lock()
		close(h.running)
		h.running = nil
		h.runMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.add(client)
		case client := <-h.Unregister:
			h.remove(client)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	set, ok := h.clients[client.accountID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.accountID] = set
	}
	set[client] = struct{}{}
	h.total++
	total := h.total
	h.mu.Unlock()

	metrics.WebSocketClients.Inc()
	logging.Info().Str("account_id", client.accountID).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	removed := h.removeLocked(client)
	total := h.total
	h.mu.Unlock()

	if removed {
		logging.Info().Str("account_id", client.accountID).Int("total_clients", total).Msg("websocket client disconnected")
	}
}

// removeLocked must be called with h.mu held.
func (h *Hub) removeLocked(client *Client) bool {
	set, ok := h.clients[client.accountID]
	if !ok {
		return false
	}
	if _, ok := set[client]; !ok {
		return false
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.accountID)
	}
	close(client.send)
	h.total--
	metrics.WebSocketClients.Dec()
	return true
}

// SendToAccount queues payload on every connection of accountID and
// returns how many accepted it. A connection whose buffer is full is
// dropped.
func (h *Hub) SendToAccount(accountID string, payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[accountID]
	if len(set) == 0 {
		return 0
	}

	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	delivered := 0
	for _, c := range clients {
		select {
		case c.send <- payload:
			delivered++
		default:
			logging.Warn().Str("account_id", accountID).Uint64("client_id", c.id).Msg("websocket send buffer full, dropping client")
			h.removeLocked(c)
		}
	}
	return delivered
}

// reply queues frame for a single registered client. Frames for clients
// that are gone or full are dropped.
func (h *Hub) reply(c *Client, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.accountID][c]; !ok {
		return
	}
	select {
	case c.send <- frame:
	default:
	}
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// AccountClientCount returns the number of connections for accountID.
func (h *Hub) AccountClientCount(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	closed := h.closeAllClients()

	reason := ShutdownReasonContextCanceled
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = ShutdownReasonContextDeadline
	}

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", closed).
		Msg("websocket hub stopped")
}

func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	closed := 0
	for _, set := range h.clients {
		for c := range set {
			if h.removeLocked(c) {
				closed++
			}
		}
	}
	return closed
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

func (h *Hub) String() string {
	return "websocket-hub"
}
