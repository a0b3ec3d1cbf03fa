// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package models defines the data structures shared between the relay's
storage, enrichment and HTTP layers.

  - Track: catalog row looked up by fingerprint during enrichment
  - TrackEnrichment, LikeState: JSON shapes written to the enrichment cache
  - APIResponse, APIError, Metadata: envelope for the health endpoints
  - HealthStatus, DeviceStats: health endpoint payloads
*/
package models
