// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

// Package auth verifies the signed device tokens carried in every relay
// frame.
//
// Tokens are minted elsewhere in the platform with a shared HS256 secret;
// the relay only verifies them. Verification runs on every frame rather than
// once per connection, so a token that expires mid-session stops working on
// the next frame.
package auth
