// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package config provides centralized configuration management for the relay.

Configuration is layered with koanf v2. Later layers override earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: CONFIG_PATH, ./config.yaml or /etc/rocksky-relay/config.yaml
 3. Environment variables, mapped explicitly in envMappings

# Configuration Structure

  - ServerConfig: HTTP listener (host, port, timeouts)
  - SecurityConfig: JWT secret, CORS origins, upgrade rate limits
  - RelayConfig: per-connection frame budget and enrichment failure policy
  - CacheConfig: cache backend (memory, badger, redis) and entry TTLs
  - DatabaseConfig: DuckDB path and store circuit breaker
  - LoggingConfig: zerolog level and format

# Environment Variables

  - HTTP_HOST, HTTP_PORT, HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - JWT_SECRET (required, at least 32 characters)
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - RELAY_MAX_FRAMES_PER_SECOND (default: 0, unlimited)
  - RELAY_UNENRICHED_ON_ERROR (default: false)
  - RELAY_SEND_BUFFER_SIZE (default: 256)
  - CACHE_BACKEND: memory, badger or redis (default: memory)
  - REDIS_ADDR, REDIS_PASSWORD, REDIS_DB, BADGER_PATH
  - CACHE_TRACK_TTL (10s), CACHE_LIKES_TTL (2s), CACHE_NOW_PLAYING_TTL (3s)
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS, DATABASE_CIRCUIT_BREAKER_TIMEOUT
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    logging.Fatal().Err(err).Msg("failed to load configuration")
	}
*/
package config
