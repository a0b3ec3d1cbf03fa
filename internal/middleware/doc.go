// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

// Package middleware provides HTTP middleware for the relay's HTTP surface.
//
//   - RequestID: assigns or propagates X-Request-ID and stores it in the
//     request context for structured logging
//   - PrometheusMetrics: request count, latency and in-flight gauge,
//     labeled by chi route pattern
//
// Both are chi-compatible (func(http.Handler) http.Handler) and preserve
// http.Hijacker so they can sit in front of the websocket endpoint.
package middleware
