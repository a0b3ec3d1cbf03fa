// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package main is the entry point for the Rocksky relay server.

The relay accepts websocket connections from a user's playback devices
(desktop app, mobile app, CLI, car head unit), relays now-playing updates
between devices of the same account after attaching catalog metadata, and
routes remote-control commands from one device to another.

# Application Architecture

Services run under a Suture v4 supervisor tree:

	RootSupervisor ("rocksky-relay")
	├── DataSupervisor ("data-layer")
	│   ├── badger-gc (CACHE_BACKEND=badger only)
	│   └── duckdb-checkpoint (DUCKDB_CHECKPOINT_INTERVAL > 0)
	├── MessagingSupervisor ("messaging-layer")
	│   └── relay-hub (owns every device socket)
	└── APISupervisor ("api-layer")
	    └── HTTP server (/ws, /health, /metrics)

Component initialization order:

 1. Configuration: Koanf v2 with defaults, config.yaml and environment
 2. Logging: zerolog with JSON/console output modes
 3. Cache: memory, Badger or Redis store for enrichment lookups
 4. Database: DuckDB track catalog behind a gobreaker circuit breaker
 5. Relay: device registry, enricher and JWT verifier
 6. Supervisor Tree: data, messaging and API layers

# Configuration

Required:
  - JWT_SECRET: HMAC secret (32+ characters) used to verify device tokens

Common options:
  - HTTP_PORT, HTTP_HOST: listen address (default 0.0.0.0:8000)
  - DUCKDB_PATH: track catalog database file
  - CACHE_BACKEND: memory, badger or redis
  - REDIS_ADDR: required when CACHE_BACKEND=redis
  - RELAY_MAX_FRAMES_PER_SECOND: per-connection inbound frame cap
  - LOG_LEVEL, LOG_FORMAT: zerolog level and output format
  - SEED_DEMO_DATA: seed a demo catalog and log a 24h token for its account

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server stops
accepting connections, the hub sends a going-away close frame to every
device, and the cache and database are closed once the tree has stopped.

# Example Usage

	export JWT_SECRET=$(openssl rand -base64 48)
	export DUCKDB_PATH=/data/rocksky.duckdb
	export CACHE_BACKEND=redis REDIS_ADDR=redis:6379
	./rocksky-relay
*/
package main
