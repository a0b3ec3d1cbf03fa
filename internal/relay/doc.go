// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package relay implements the device relay: registering an account's devices,
fanning now-playing telemetry out to all of them, and routing remote-control
commands to one device or all.

# Components

  - Classify decodes each inbound text frame into a Frame tagged as
    keep-alive, data, control, register or invalid.
  - Registry maps device ids to connections and accounts to their devices.
  - Enricher attaches album art, canonical URIs and liked-state to
    now-playing payloads, reading through the cache to the catalog.
  - Router delivers control and data frames inside one account.
  - Session is the per-connection lifecycle: register, dispatch, cleanup.

# Frames

Client to server:

	ping                                                        keep-alive
	{"type":"register","clientName":"...","token":"..."}
	{"type":"message","data":{...},"deviceId":"...","token":"..."}
	{"type":"...","action":"...","target":"...","args":...,"token":"..."}

Server to client:

	pong
	{"status":"registered","deviceId":"..."}
	{"type":"device_registered","deviceId":"...","clientName":"..."}
	{"type":"message","data":{...},"deviceId":"..."}
	{"type":"...","action":"...","args":...}

Shapes are tried in the order data, control, register; a payload that fits
more than one takes the first.

# Failure Semantics

The token is verified on every frame. A frame that fails to parse, matches
no shape, carries a bad token, names a control target outside the sender's
account, or whose enrichment fails is dropped. The peer is never told:
silence is the only signal. Every drop is logged and counted in
relay_frames_dropped_total by reason.

Enrichment is all-or-nothing: a cache or catalog error drops the message for
every device of the account, unless relay.relay_unenriched_on_error is set,
in which case the payload is relayed without metadata.

# Concurrency

Each connection's frames are handled sequentially by its read loop. The
registry is shared by all connections and guarded by a single RWMutex.
Sends are non-blocking and resolve the device under the registry lock
immediately before queueing, so a device that disconnected during a slow
enrichment is skipped.

Device presence lives only in this process and is lost on restart; clients
re-register on reconnect.
*/
package relay
