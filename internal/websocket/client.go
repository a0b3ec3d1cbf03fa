// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package websocket

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/relay"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

// clientIDCounter orders clients so shutdown closes them deterministically.
var clientIDCounter atomic.Uint64

// Client is the socket side of one device connection. It owns the read and
// write goroutines and implements relay.Sender for the registry.
type Client struct {
	id     uint64
	connID string
	hub    *Hub
	conn   *websocket.Conn

	session *relay.Session

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, bufferSize int) *Client {
	c := &Client{
		id:     clientIDCounter.Add(1),
		connID: logging.GenerateConnectionID(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, bufferSize),
	}
	c.session = hub.relay.NewSession(c)
	return c
}

// ConnectionID returns the id attached to this connection's log lines.
func (c *Client) ConnectionID() string {
	return c.connID
}

// Send queues msg for the write goroutine. It never blocks: a closed client
// or a full queue reports false and the message is lost.
func (c *Client) Send(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		logging.Warn().Str("connection_id", c.connID).Msg("websocket send buffer full, dropping message")
		return false
	}
}

// closeSend closes the outbound queue. The write goroutine then sends a
// close frame and tears down the socket. Safe to call more than once.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump feeds inbound text frames to the relay session one at a time.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.session.Close()
		c.hub.unregister(c)
		_ = c.conn.Close() // best-effort cleanup
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Ctx(ctx).Warn().Err(err).Msg("unexpected websocket close error")
			}
			return
		}
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			logging.Ctx(ctx).Debug().Int("message_type", messageType).Msg("ignoring non-text websocket frame")
			continue
		}
		c.session.Handle(ctx, data)
	}
}

// writePump drains the outbound queue and keeps the socket alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the queue.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logging.Debug().Err(err).Str("connection_id", c.connID).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) start(ctx context.Context) {
	go c.writePump()
	go c.readPump(ctx)
}
