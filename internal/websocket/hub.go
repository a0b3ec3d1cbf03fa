// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/rocksky-relay/internal/config"
	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/metrics"
	"github.com/tomtom215/rocksky-relay/internal/relay"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown path (e.g., SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// ErrHubNotRunning is returned by Attach when the hub is not accepting
// connections.
var ErrHubNotRunning = errors.New("relay hub is not running")

// statsInterval controls how often the hub logs connection counts.
const statsInterval = time.Minute

// Hub owns every open device socket. Routing between devices is done by the
// relay registry; the hub only manages socket lifetimes.
type Hub struct {
	relay      *relay.Relay
	bufferSize int

	mu      sync.RWMutex
	clients map[*Client]struct{}
	ctx     context.Context // nil while not running
}

// NewHub creates a hub that opens a relay session for each socket.
func NewHub(r *relay.Relay, cfg *config.RelayConfig) *Hub {
	size := cfg.SendBufferSize
	if size < 1 {
		size = 256
	}
	return &Hub{
		relay:      r,
		bufferSize: size,
		clients:    make(map[*Client]struct{}),
	}
}

// RunWithContext accepts connections until ctx is canceled, then closes
// every client and returns ctx.Err(). Designed for suture supervision: a
// restarted hub starts with no clients.
func (h *Hub) RunWithContext(ctx context.Context) error {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()

	logging.Info().Str("component", "relay-hub").Msg("relay hub started")

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case <-ticker.C:
			devices, accounts := h.relay.Registry().Counts()
			logging.Debug().
				Str("component", "relay-hub").
				Int("connections", h.GetClientCount()).
				Int("devices", devices).
				Int("accounts", accounts).
				Msg("relay hub stats")
		}
	}
}

// Running reports whether Attach would accept a connection.
func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.ctx != nil
}

// Attach takes ownership of an upgraded socket and starts its pumps. The
// socket is closed if the hub is not running.
func (h *Hub) Attach(conn *websocket.Conn) (*Client, error) {
	client := newClient(h, conn, h.bufferSize)

	h.mu.Lock()
	hubCtx := h.ctx
	if hubCtx == nil {
		h.mu.Unlock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "relay unavailable"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return nil, ErrHubNotRunning
	}
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.RelayConnections.Inc()
	logging.Info().
		Str("connection_id", client.connID).
		Str("remote_addr", conn.RemoteAddr().String()).
		Int("total_clients", total).
		Msg("websocket client connected")

	client.start(logging.ContextWithConnectionID(hubCtx, client.connID))
	return client, nil
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
	}
	total := len(h.clients)
	h.mu.Unlock()

	client.closeSend()
	if !ok {
		return
	}
	metrics.RelayConnections.Dec()
	logging.Info().
		Str("connection_id", client.connID).
		Int("total_clients", total).
		Msg("websocket client disconnected")
}

// GetClientCount returns the number of open sockets.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// logGracefulShutdown closes all clients and logs why. ctx.Err() is not
// logged as an error since cancellation is the expected shutdown path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.closeAllClients()

	logging.Info().
		Str("component", "relay-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("relay hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// closeAllClients stops accepting connections and closes every client in
// id order. Each client's read loop removes its device from the registry
// as the socket goes down.
func (h *Hub) closeAllClients() int {
	h.mu.Lock()
	h.ctx = nil
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	clear(h.clients)
	h.mu.Unlock()

	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	for _, client := range clients {
		client.closeSend()
		metrics.RelayConnections.Dec()
	}
	return len(clients)
}
