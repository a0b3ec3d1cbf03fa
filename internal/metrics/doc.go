// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package metrics declares the Prometheus collectors exported at /metrics.

All collectors are registered on the default registry through promauto, so
importing the package is enough to expose them.

# Available Metrics

Relay:
  - relay_connections: open websocket connections (gauge)
  - relay_registered_devices, relay_connected_accounts: registry size (gauges)
  - relay_frames_received_total{kind}: inbound frames by classification
  - relay_frames_dropped_total{reason}: frames dropped with no reply
  - relay_messages_sent_total{type}: outbound frames queued to devices
  - relay_messages_undelivered_total: sends that found no live device
  - relay_enrichment_cache_lookups_total{entry,result}: track/likes cache hits
  - relay_enrichment_duration_seconds: per-payload enrichment latency

Store:
  - duckdb_query_duration_seconds{operation}
  - duckdb_query_errors_total{operation,error_type}
  - circuit_breaker_state{name}, circuit_breaker_requests_total{name,result},
    circuit_breaker_consecutive_failures{name},
    circuit_breaker_state_transitions_total{name,from_state,to_state}

HTTP:
  - api_requests_total{method,endpoint,status_code}
  - api_request_duration_seconds{method,endpoint}
  - api_active_requests

Label values are always drawn from small fixed sets. Error text, account
identifiers and device identifiers are never used as labels.
*/
package metrics
