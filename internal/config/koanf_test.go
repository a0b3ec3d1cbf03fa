// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// isolateConfigFile points CONFIG_PATH at a file that does not exist and
// moves into an empty directory so no stray config.yaml is picked up.
func isolateConfigFile(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)
	t.Setenv(ConfigPathEnvVar, filepath.Join(tmpDir, "missing.yaml"))
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Cache.Backend != CacheBackendMemory {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Cache.TrackTTL != 10*time.Second {
		t.Errorf("Cache.TrackTTL = %v, want 10s", cfg.Cache.TrackTTL)
	}
	if cfg.Cache.LikesTTL != 2*time.Second {
		t.Errorf("Cache.LikesTTL = %v, want 2s", cfg.Cache.LikesTTL)
	}
	if cfg.Cache.NowPlayingTTL != 3*time.Second {
		t.Errorf("Cache.NowPlayingTTL = %v, want 3s", cfg.Cache.NowPlayingTTL)
	}
	if cfg.Relay.RelayUnenrichedOnError {
		t.Error("Relay.RelayUnenrichedOnError should be false by default")
	}
	if cfg.Relay.MaxFramesPerSecond != 0 {
		t.Errorf("Relay.MaxFramesPerSecond = %d, want 0", cfg.Relay.MaxFramesPerSecond)
	}
	if cfg.Cache.BadgerGCInterval != 5*time.Minute {
		t.Errorf("Cache.BadgerGCInterval = %v, want 5m", cfg.Cache.BadgerGCInterval)
	}
	if cfg.Database.CheckpointInterval != 10*time.Minute {
		t.Errorf("Database.CheckpointInterval = %v, want 10m", cfg.Database.CheckpointInterval)
	}
	if cfg.Database.SeedDemoData {
		t.Error("Database.SeedDemoData = true, want false")
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"RELAY_UNENRICHED_ON_ERROR", "relay.relay_unenriched_on_error"},
		{"CACHE_BACKEND", "cache.backend"},
		{"REDIS_ADDR", "cache.redis_addr"},
		{"DUCKDB_PATH", "database.path"},
		{"LOG_LEVEL", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	isolateConfigFile(t)
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://rocksky.app, https://web.rocksky.app")
	t.Setenv("RELAY_MAX_FRAMES_PER_SECOND", "20")
	t.Setenv("CACHE_TRACK_TTL", "30s")
	t.Setenv("SEED_DEMO_DATA", "true")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://web.rocksky.app" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
	if cfg.Relay.MaxFramesPerSecond != 20 {
		t.Errorf("Relay.MaxFramesPerSecond = %d, want 20", cfg.Relay.MaxFramesPerSecond)
	}
	if cfg.Cache.TrackTTL != 30*time.Second {
		t.Errorf("Cache.TrackTTL = %v, want 30s", cfg.Cache.TrackTTL)
	}
	if cfg.Cache.LikesTTL != 2*time.Second {
		t.Errorf("Cache.LikesTTL = %v, want 2s (default)", cfg.Cache.LikesTTL)
	}
	if !cfg.Database.SeedDemoData {
		t.Error("Database.SeedDemoData = false, want true")
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	isolateConfigFile(t)

	configContent := `
server:
  port: 8888
  host: "127.0.0.1"
security:
  jwt_secret: "` + testSecret + `"
cache:
  backend: "badger"
relay:
  relay_unenriched_on_error: true
logging:
  level: "warn"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Cache.Backend != CacheBackendBadger {
		t.Errorf("Cache.Backend = %q, want badger", cfg.Cache.Backend)
	}
	if !cfg.Relay.RelayUnenrichedOnError {
		t.Error("Relay.RelayUnenrichedOnError = false, want true from file")
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env overrides file)", cfg.Logging.Level)
	}
	if cfg.Database.Path != "/data/rocksky.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "short secret",
			env:     map[string]string{"JWT_SECRET": "short"},
			wantErr: "at least 32 characters",
		},
		{
			name:    "redis without address",
			env:     map[string]string{"JWT_SECRET": testSecret, "CACHE_BACKEND": "redis"},
			wantErr: "REDIS_ADDR is required",
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"JWT_SECRET": testSecret, "CACHE_BACKEND": "memcached"},
			wantErr: "CACHE_BACKEND must be one of",
		},
		{
			name:    "negative frame budget",
			env:     map[string]string{"JWT_SECRET": testSecret, "RELAY_MAX_FRAMES_PER_SECOND": "-1"},
			wantErr: "must not be negative",
		},
		{
			name:    "badger without GC interval",
			env:     map[string]string{"JWT_SECRET": testSecret, "CACHE_BACKEND": "badger", "BADGER_GC_INTERVAL": "0s"},
			wantErr: "BADGER_GC_INTERVAL must be positive",
		},
		{
			name:    "bad port",
			env:     map[string]string{"JWT_SECRET": testSecret, "HTTP_PORT": "70000"},
			wantErr: "HTTP_PORT must be between",
		},
		{
			name:    "bad log format",
			env:     map[string]string{"JWT_SECRET": testSecret, "LOG_FORMAT": "xml"},
			wantErr: "LOG_FORMAT must be json or console",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigFile(t)
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("LoadWithKoanf() error = nil, want %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadWithKoanf() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfigAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if got := s.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:8000", got)
	}
}
