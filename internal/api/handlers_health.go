// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/rocksky-relay/internal/cache"
	"github.com/tomtom215/rocksky-relay/internal/models"
)

// readyPingTimeout bounds each dependency ping made by the probes.
const readyPingTimeout = 2 * time.Second

// cacheStatser is implemented by cache.MemoryStore.
type cacheStatser interface {
	Stats() cache.Stats
}

func memoryCacheStats(p Pinger) *models.CacheStats {
	s, ok := p.(cacheStatser)
	if !ok {
		return nil
	}
	stats := s.Stats()
	return &models.CacheStats{
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
		Keys:      stats.TotalKeys,
		HitRate:   stats.HitRate(),
	}
}

func ping(ctx context.Context, p Pinger) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, readyPingTimeout)
	defer cancel()
	return p.Ping(ctx) == nil
}

// Health reports overall status. The relay keeps working with the cache
// down (every lookup falls through to the store), so only the store
// decides between healthy and degraded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := ping(r.Context(), h.store)
	cacheConnected := ping(r.Context(), h.cache)

	status := "healthy"
	if !dbConnected || h.hub == nil || !h.hub.Running() {
		status = "degraded"
	}

	backend := ""
	if h.config != nil {
		backend = h.config.Cache.Backend
	}

	respondSuccess(w, models.HealthStatus{
		Status:            status,
		Version:           h.version,
		DatabaseConnected: dbConnected,
		CacheConnected:    cacheConnected,
		CacheBackend:      backend,
		Uptime:            time.Since(h.startTime).Seconds(),
		Cache:             memoryCacheStats(h.cache),
	})
}

// HealthLive returns 200 while the process is alive, regardless of
// dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondSuccess(w, map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady returns 200 only when the hub accepts sockets and the store
// and cache answer a ping; otherwise 503.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := ping(r.Context(), h.store)
	cacheConnected := ping(r.Context(), h.cache)
	hubRunning := h.hub != nil && h.hub.Running()
	ready := dbConnected && cacheConnected && hubRunning

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"cache_connected":    cacheConnected,
			"hub_running":        hubRunning,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthDevices reports open sockets, registered devices and accounts.
func (h *Handler) HealthDevices(w http.ResponseWriter, _ *http.Request) {
	var stats models.DeviceStats
	if h.hub != nil {
		stats.Connections = h.hub.GetClientCount()
	}
	if h.registry != nil {
		stats.Devices, stats.Accounts = h.registry.Counts()
	}
	respondSuccess(w, stats)
}
