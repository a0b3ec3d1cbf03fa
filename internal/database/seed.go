// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package database

import (
	"context"
	"fmt"

	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/models"
)

// DemoAccountDID is the account seeded by SeedDemoData.
const DemoAccountDID = "did:plc:rockskydemo"

// demoTracks are seeded in order; the first two are loved by the demo account.
var demoTracks = []models.Track{
	{
		Title:     "Karma Police",
		Artist:    "Radiohead",
		Album:     "OK Computer",
		AlbumArt:  "https://cdn.rocksky.app/covers/ok-computer.jpg",
		URI:       "at://did:plc:rockskydemo/app.rocksky.song/karma-police",
		AlbumURI:  "at://did:plc:rockskydemo/app.rocksky.album/ok-computer",
		ArtistURI: "at://did:plc:rockskydemo/app.rocksky.artist/radiohead",
	},
	{
		Title:    "Windowlicker",
		Artist:   "Aphex Twin",
		Album:    "Windowlicker",
		AlbumArt: "https://cdn.rocksky.app/covers/windowlicker.jpg",
		URI:      "at://did:plc:rockskydemo/app.rocksky.song/windowlicker",
	},
	{
		Title:  "Teardrop",
		Artist: "Massive Attack",
		Album:  "Mezzanine",
	},
}

// SeedDemoData creates a demo account, a few catalog tracks and loved
// records so a local relay enriches now-playing frames without a platform
// database. Running it twice is harmless.
func (db *DB) SeedDemoData(ctx context.Context) error {
	logging.Info().Str("did", DemoAccountDID).Msg("Seeding demo catalog...")

	userID, err := db.UpsertUser(ctx, DemoAccountDID, "demo.rocksky.app")
	if err != nil {
		return fmt.Errorf("seed demo user: %w", err)
	}

	for i := range demoTracks {
		track := demoTracks[i]
		trackID, err := db.UpsertTrack(ctx, &track)
		if err != nil {
			return fmt.Errorf("seed demo track %q: %w", track.Title, err)
		}
		if i < 2 {
			if err := db.LoveTrack(ctx, userID, trackID); err != nil {
				return fmt.Errorf("seed demo like %q: %w", track.Title, err)
			}
		}
	}

	logging.Info().Int("tracks", len(demoTracks)).Msg("Demo catalog seeded")
	return nil
}
