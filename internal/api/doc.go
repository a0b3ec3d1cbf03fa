// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

// Package api provides the relay's HTTP surface: the device websocket
// endpoint, health probes and the Prometheus scrape endpoint.
//
// Routing uses go-chi/chi with go-chi/cors for preflight handling and
// go-chi/httprate to limit upgrade attempts per client IP. Frames on an
// open socket are not handled here; once upgraded, a connection belongs to
// the websocket hub and its relay session.
//
// # Responses
//
// JSON bodies use the models.APIResponse envelope:
//
//	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}
//	{"status": "error", "error": {"code": "NOT_FOUND", "message": "Not found"}, ...}
//
// The readiness probe uses status "ready" or "not_ready" and answers 503
// when the store, the cache or the hub is unavailable.
package api
