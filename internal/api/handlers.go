// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/rocksky-relay/internal/config"
	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/relay"
	ws "github.com/tomtom215/rocksky-relay/internal/websocket"
)

// Pinger is a dependency whose reachability is reported by the health
// endpoints. Both the track store and the enrichment cache satisfy it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the websocket endpoint and the health probes.
type Handler struct {
	hub       *ws.Hub
	registry  *relay.Registry
	store     Pinger
	cache     Pinger
	config    *config.Config
	version   string
	startTime time.Time
}

// NewHandler creates a new API handler. store and cache may be nil, in
// which case they are reported as disconnected.
func NewHandler(hub *ws.Hub, registry *relay.Registry, store, cache Pinger, cfg *config.Config, version string) *Handler {
	return &Handler{
		hub:       hub,
		registry:  registry,
		store:     store,
		cache:     cache,
		config:    cfg,
		version:   version,
		startTime: time.Now(),
	}
}

func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates websocket origins. Devices are usually
// native players that send no Origin at all, so a missing header is
// accepted; a browser Origin must be in the CORS allow list.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// WebSocket upgrades a device connection and hands it to the hub.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil || !h.hub.Running() {
		logging.Ctx(r.Context()).Warn().Msg("WebSocket connection rejected: relay hub not running")
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Relay service unavailable", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logging.Ctx(r.Context()).Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	client, err := h.hub.Attach(conn)
	if err != nil {
		if errors.Is(err, ws.ErrHubNotRunning) {
			logging.Ctx(r.Context()).Warn().Msg("WebSocket closed: relay hub stopped during upgrade")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to attach websocket client")
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("connection_id", client.ConnectionID()).
		Str("remote_addr", sanitizeLogValue(r.RemoteAddr)).
		Msg("Device socket opened")
}
