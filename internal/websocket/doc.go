// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package websocket binds device sockets to relay sessions.

Each upgraded connection becomes a Client with two goroutines:

  - readPump: reads text frames and hands them to the connection's
    relay.Session in arrival order; when the socket ends it closes the
    session, which removes the device from the registry
  - writePump: drains the bounded outbound queue and sends protocol pings

Client implements relay.Sender, so the registry can queue frames for any
device without knowing about sockets. Send never blocks: a full queue or a
closed client drops the frame.

The Hub tracks open clients for shutdown and for the relay_connections
gauge. It is run under suture supervision:

	hub := websocket.NewHub(r, &cfg.Relay)
	tree.AddMessagingService(services.NewWebSocketHubService(hub))

	// in the HTTP handler, after upgrading:
	client, err := hub.Attach(conn)

When its context is canceled the hub stops accepting sockets and closes
every client with a going-away close frame.

Protocol timing:

  - writeWait: 10 seconds to complete a write
  - pongWait: 60 seconds without a pong or frame before the read fails
  - pingPeriod: 54 seconds between pings
  - maxMessageSize: 512 KB per inbound frame
*/
package websocket
