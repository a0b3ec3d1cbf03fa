// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/rocksky-relay/internal/metrics"
	"github.com/tomtom215/rocksky-relay/internal/models"
)

// TrackByFingerprint returns the catalog track with the given fingerprint,
// or nil if the catalog has none. Absence is not an error.
func (db *DB) TrackByFingerprint(ctx context.Context, fingerprint string) (*models.Track, error) {
	start := time.Now()
	query := `SELECT id, title, artist, album, sha256,
			COALESCE(album_art, ''), COALESCE(uri, ''), COALESCE(album_uri, ''), COALESCE(artist_uri, ''),
			created_at
		FROM tracks WHERE sha256 = ?`

	var t models.Track
	err := db.conn.QueryRowContext(ctx, query, fingerprint).Scan(
		&t.ID, &t.Title, &t.Artist, &t.Album, &t.SHA256,
		&t.AlbumArt, &t.URI, &t.AlbumURI, &t.ArtistURI,
		&t.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		metrics.RecordDBQuery("track_by_fingerprint", time.Since(start), nil)
		return nil, nil
	}
	metrics.RecordDBQuery("track_by_fingerprint", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query track %s: %w", fingerprint, err)
	}
	return &t, nil
}

// IsLoved reports whether the account identified by did has loved the track
// with the given fingerprint.
func (db *DB) IsLoved(ctx context.Context, did, fingerprint string) (bool, error) {
	start := time.Now()
	query := `SELECT EXISTS (
			SELECT 1 FROM loved_tracks lt
			JOIN tracks t ON lt.track_id = t.id
			JOIN users u ON lt.user_id = u.id
			WHERE u.did = ? AND t.sha256 = ?
		)`

	var loved bool
	err := db.conn.QueryRowContext(ctx, query, did, fingerprint).Scan(&loved)
	metrics.RecordDBQuery("is_loved", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to query loved state: %w", err)
	}
	return loved, nil
}

// UpsertUser inserts a user keyed by did, or updates its handle, and returns
// the user id.
func (db *DB) UpsertUser(ctx context.Context, did, handle string) (string, error) {
	start := time.Now()
	query := `INSERT INTO users (id, did, handle, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (did) DO UPDATE SET handle = excluded.handle
		RETURNING id`

	var id string
	err := db.conn.QueryRowContext(ctx, query, uuid.New().String(), did, handle, time.Now().UTC()).Scan(&id)
	metrics.RecordDBQuery("upsert_user", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to upsert user %s: %w", did, err)
	}
	return id, nil
}

// UpsertTrack inserts or refreshes a catalog track and returns its id. An
// empty SHA256 is filled in from title, artist and album.
func (db *DB) UpsertTrack(ctx context.Context, t *models.Track) (string, error) {
	if t.SHA256 == "" {
		t.SHA256 = models.Fingerprint(t.Title, t.Artist, t.Album)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	start := time.Now()
	query := `INSERT INTO tracks (id, title, artist, album, sha256, album_art, uri, album_uri, artist_uri, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (sha256) DO UPDATE SET
			album_art = excluded.album_art,
			uri = excluded.uri,
			album_uri = excluded.album_uri,
			artist_uri = excluded.artist_uri
		RETURNING id`

	var id string
	err := db.conn.QueryRowContext(ctx, query,
		uuid.New().String(), t.Title, t.Artist, t.Album, t.SHA256,
		nullString(t.AlbumArt), nullString(t.URI), nullString(t.AlbumURI), nullString(t.ArtistURI),
		t.CreatedAt,
	).Scan(&id)
	metrics.RecordDBQuery("upsert_track", time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("failed to upsert track %s: %w", t.SHA256, err)
	}
	t.ID = id
	return id, nil
}

// LoveTrack records that a user loved a track. Loving twice is a no-op.
func (db *DB) LoveTrack(ctx context.Context, userID, trackID string) error {
	start := time.Now()
	query := `INSERT INTO loved_tracks (id, user_id, track_id, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, track_id) DO NOTHING`

	_, err := db.conn.ExecContext(ctx, query, uuid.New().String(), userID, trackID, time.Now().UTC())
	metrics.RecordDBQuery("love_track", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to love track: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
