// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package cache provides the short-TTL key/value store used by now-playing
enrichment.

Three backends implement Store:

  - MemoryStore: in-process TTL map, the default for a single relay
  - BadgerStore: embedded BadgerDB with per-entry TTLs, on disk or in memory
  - RedisStore: a Redis server shared with the rest of the platform

All cached values are JSON strings. Keys follow the platform-wide layout:

	track:{fingerprint}             track metadata (10s)
	likes:{account}:{fingerprint}   liked-state (2s)
	nowplaying:{account}            latest enriched payload (3s)

Use TrackKey, LikesKey and NowPlayingKey rather than formatting keys by hand
so the relay keeps hitting entries written by other services.
*/
package cache
