// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/rocksky-relay/internal/config"
)

// Store is the short-TTL key/value cache the enrichment pipeline reads and
// writes. Entries are advisory; a miss is never an error.
type Store interface {
	// Get returns the value for key and whether it was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)

	// SetWithExpiry stores value under key for ttl.
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// Open creates the Store selected by cfg.Backend.
func Open(cfg *config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case config.CacheBackendMemory, "":
		return NewMemoryStore(), nil
	case config.CacheBackendBadger:
		return OpenBadgerStore(cfg.BadgerPath)
	case config.CacheBackendRedis:
		return OpenRedisStore(cfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// TrackKey is the key of the cached track metadata for a fingerprint.
func TrackKey(fingerprint string) string {
	return "track:" + fingerprint
}

// LikesKey is the key of the cached liked-state of a track for an account.
func LikesKey(accountID, fingerprint string) string {
	return "likes:" + accountID + ":" + fingerprint
}

// NowPlayingKey is the key of the latest enriched now-playing snapshot of an
// account.
func NowPlayingKey(accountID string) string {
	return "nowplaying:" + accountID
}
