// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package services provides suture.Service wrappers for relay components.

Each wrapper translates a component's lifecycle into suture's
context-aware Serve method and names itself via fmt.Stringer so supervisor
events identify it.

# Available Services

HTTPServerService:
  - Wraps *http.Server (websocket endpoint, health, metrics)
  - Converts ListenAndServe to Serve with a bounded graceful Shutdown

RelayHubService:
  - Wraps websocket.Hub.RunWithContext
  - Closing the hub closes every device socket; their devices leave the
    registry through the normal connection-close path

MaintenanceService:
  - Runs a storage task on an interval (badger value-log GC, DuckDB
    checkpoint)
  - Task errors are logged and retried next tick, never returned

# Error Handling

Returning ctx.Err() signals a clean stop. Any other error is a failure and
suture restarts the service subject to the tree's backoff settings.
*/
package services
