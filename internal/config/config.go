// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package config

import (
	"fmt"
	"time"
)

// Cache backends accepted by CacheConfig.Backend.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
	CacheBackendRedis  = "redis"
)

// Config holds all relay configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Relay    RelayConfig    `koanf:"relay"`
	Cache    CacheConfig    `koanf:"cache"`
	Database DatabaseConfig `koanf:"database"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds token verification and HTTP hardening settings.
type SecurityConfig struct {
	// JWTSecret is the HS256 secret shared with the identity layer that
	// issues device tokens.
	JWTSecret string `koanf:"jwt_secret"`

	// CORSOrigins lists origins allowed to open the websocket. "*" allows all.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs and RateLimitWindow bound websocket upgrade attempts per
	// client IP.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// RelayConfig holds device relay behavior.
type RelayConfig struct {
	// MaxFramesPerSecond caps inbound frames per connection. 0 disables the cap.
	MaxFramesPerSecond int `koanf:"max_frames_per_second"`

	// RelayUnenrichedOnError relays a now-playing payload without metadata
	// when enrichment fails, instead of dropping it for every device.
	RelayUnenrichedOnError bool `koanf:"relay_unenriched_on_error"`

	// SendBufferSize is the per-connection outbound queue length.
	SendBufferSize int `koanf:"send_buffer_size"`
}

// CacheConfig selects and configures the short-TTL cache store.
type CacheConfig struct {
	Backend string `koanf:"backend"`

	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`

	// BadgerPath is the badger directory. Empty runs badger in memory.
	BadgerPath string `koanf:"badger_path"`

	// BadgerGCInterval is how often expired badger entries are reclaimed.
	BadgerGCInterval time.Duration `koanf:"badger_gc_interval"`

	TrackTTL      time.Duration `koanf:"track_ttl"`
	LikesTTL      time.Duration `koanf:"likes_ttl"`
	NowPlayingTTL time.Duration `koanf:"now_playing_ttl"`
}

// DatabaseConfig holds the persisted store settings.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"`

	// CircuitBreakerTimeout is how long the store breaker stays open before
	// probing again.
	CircuitBreakerTimeout time.Duration `koanf:"circuit_breaker_timeout"`

	// CheckpointInterval is how often the WAL is flushed into the database
	// file. 0 disables periodic checkpoints.
	CheckpointInterval time.Duration `koanf:"checkpoint_interval"`

	// SeedDemoData loads a small demo catalog at startup for local testing.
	SeedDemoData bool `koanf:"seed_demo_data"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}
