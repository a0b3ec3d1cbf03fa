// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package services

import (
	"context"
)

// ContextHub is satisfied by *websocket.Hub. Declaring it here keeps this
// package free of a websocket import.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// RelayHubService supervises the hub that owns every device socket. When
// it stops, all sockets are closed and their devices leave the registry;
// a restart begins with an empty hub.
//
//	hub := websocket.NewHub(r, &cfg.Relay)
//	tree.AddMessagingService(services.NewRelayHubService(hub))
type RelayHubService struct {
	hub  ContextHub
	name string
}

// NewRelayHubService wraps hub.
func NewRelayHubService(hub ContextHub) *RelayHubService {
	return &RelayHubService{
		hub:  hub,
		name: "relay-hub",
	}
}

// Serve implements suture.Service.
func (s *RelayHubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

func (s *RelayHubService) String() string {
	return s.name
}
