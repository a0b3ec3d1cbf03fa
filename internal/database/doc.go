// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package database provides the DuckDB-backed track catalog read by now-playing
enrichment.

The relay only consumes two reads:

  - TrackByFingerprint: a track's album art and canonical URIs by fingerprint
  - IsLoved: whether an account (by did) has loved a track

Both are wrapped by CircuitBreakerStore in production so a failing catalog
trips open and enrichment fails fast.

# Schema

	users(id, did UNIQUE, handle, created_at)
	tracks(id, title, artist, album, sha256 UNIQUE, album_art, uri, album_uri, artist_uri, created_at)
	loved_tracks(id, user_id, track_id, created_at, UNIQUE(user_id, track_id))

UpsertUser, UpsertTrack and LoveTrack back SeedDemoData and the tests.

# Connection

The connection string disables extension auto-install so startup never
reaches for the network:

	{path}?access_mode=read_write&threads=N&max_memory=M&autoinstall_known_extensions=false&autoload_known_extensions=false

Use Path ":memory:" for tests.
*/
package database
