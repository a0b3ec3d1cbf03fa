// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package models

import "time"

// Track is a catalog track keyed by its content fingerprint.
type Track struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Album     string    `json:"album"`
	SHA256    string    `json:"sha256"`
	AlbumArt  string    `json:"album_art,omitempty"`
	URI       string    `json:"uri,omitempty"`
	AlbumURI  string    `json:"album_uri,omitempty"`
	ArtistURI string    `json:"artist_uri,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackEnrichment is the cached track:{fingerprint} entry. The field names
// match what the rest of the platform writes under the same key.
type TrackEnrichment struct {
	AlbumArt  *string `json:"albumArt"`
	URI       *string `json:"uri"`
	AlbumURI  *string `json:"albumUri"`
	ArtistURI *string `json:"artistUri"`
	Liked     bool    `json:"liked"`
}

// NewTrackEnrichment builds the cache entry for a resolved track. Empty
// catalog columns are cached as null.
func NewTrackEnrichment(t *Track, liked bool) TrackEnrichment {
	return TrackEnrichment{
		AlbumArt:  nullable(t.AlbumArt),
		URI:       nullable(t.URI),
		AlbumURI:  nullable(t.AlbumURI),
		ArtistURI: nullable(t.ArtistURI),
		Liked:     liked,
	}
}

// LikeState is the cached likes:{account}:{fingerprint} entry.
type LikeState struct {
	Liked bool `json:"liked"`
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
