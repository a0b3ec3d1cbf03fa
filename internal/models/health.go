// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package models

// HealthStatus is returned by /health/ready.
type HealthStatus struct {
	Status            string  `json:"status"` // "healthy" or "degraded"
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	CacheConnected    bool    `json:"cache_connected"`
	CacheBackend      string  `json:"cache_backend"`
	Uptime            float64 `json:"uptime_seconds"`

	// Cache is only set for the in-process memory backend.
	Cache *CacheStats `json:"cache,omitempty"`
}

// CacheStats are the memory cache counters.
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Keys      int64   `json:"keys"`
	HitRate   float64 `json:"hit_rate"`
}

// DeviceStats is returned by /health/devices. It reports counts only;
// account and device identifiers are never exposed.
type DeviceStats struct {
	Connections int `json:"connections"`
	Devices     int `json:"devices"`
	Accounts    int `json:"accounts"`
}
