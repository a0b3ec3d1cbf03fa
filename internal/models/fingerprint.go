// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package models

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fingerprint returns the platform-wide track key: the hex SHA-256 of the
// lowercased "title - artist - album" string. It must stay byte-compatible
// with the catalog writers or cache and store lookups will never match.
//
// Lowercasing uses full Unicode case mapping (İ -> i̇, word-final Σ -> ς),
// which strings.ToLower does not apply.
func Fingerprint(title, artist, album string) string {
	// cases.Caser is stateful; build one per call.
	lower := cases.Lower(language.Und)
	sum := sha256.Sum256([]byte(lower.String(title + " - " + artist + " - " + album)))
	return hex.EncodeToString(sum[:])
}
