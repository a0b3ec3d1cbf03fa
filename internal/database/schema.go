// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// tableCreationQueries mirrors the subset of the platform catalog the relay
// reads. Timestamps are written by the application so no extension-backed
// defaults are needed.
func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id VARCHAR PRIMARY KEY,
			did VARCHAR NOT NULL UNIQUE,
			handle VARCHAR,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			artist VARCHAR NOT NULL,
			album VARCHAR NOT NULL,
			sha256 VARCHAR NOT NULL UNIQUE,
			album_art VARCHAR,
			uri VARCHAR,
			album_uri VARCHAR,
			artist_uri VARCHAR,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS loved_tracks (
			id VARCHAR PRIMARY KEY,
			user_id VARCHAR NOT NULL,
			track_id VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			UNIQUE (user_id, track_id)
		)`,
	}
}
