// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

// Package logging provides centralized zerolog-based logging for the relay.
//
// A single global logger is configured once at startup from the logging
// section of the configuration:
//
//	logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	})
//
//	logging.Info().Msg("relay starting")
//	logging.Err(err).Msg("store unavailable")
//
// Per-connection lines are emitted through Ctx, which adds the request and
// connection identifiers stored in the context:
//
//	ctx = logging.ContextWithConnectionID(ctx, logging.GenerateConnectionID())
//	logging.Ctx(ctx).Warn().Str("reason", "unauthorized").Msg("frame dropped")
//
// # Best Practices
//
// Always terminate log chains with .Msg() or .Send(); an unterminated chain
// is never written. Prefer structured fields to formatted messages.
//
// NewSlogLogger bridges the global logger into log/slog for libraries such
// as sutureslog that only accept an *slog.Logger.
package logging
