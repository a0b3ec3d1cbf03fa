// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package relay

import (
	"fmt"

	"github.com/tomtom215/rocksky-relay/internal/metrics"
)

// Router delivers relayed frames to the devices of one account. It never
// crosses accounts: every destination is resolved inside the sender's own
// device list.
type Router struct {
	registry *Registry
}

// NewRouter creates a Router over registry.
func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// RouteControl relays a command stripped of its token and target.
//
// With a target, only that device receives it, and only if it belongs to
// accountID; otherwise nothing is sent and ErrTargetNotFound is returned.
// Without a target every device of the account receives it, the sender
// included.
func (r *Router) RouteControl(accountID string, f *ControlFrame) (int, error) {
	msg, err := encodeRelayedControl(f)
	if err != nil {
		return 0, fmt.Errorf("encode control: %w", err)
	}

	if f.Target != nil {
		target := *f.Target
		if _, ok := r.registry.Resolve(accountID, target); !ok {
			return 0, fmt.Errorf("%w: %q", ErrTargetNotFound, target)
		}
		if !r.registry.Send(accountID, target, msg) {
			return 0, nil
		}
		metrics.RelayMessagesSent.WithLabelValues("control").Inc()
		return 1, nil
	}

	sent := r.registry.Broadcast(accountID, msg)
	metrics.RelayMessagesSent.WithLabelValues("control").Add(float64(sent))
	return sent, nil
}

// FanOut relays a data payload to every device of accountID, the sender
// included. deviceID is the sender's id as it appeared in the frame.
func (r *Router) FanOut(accountID, deviceID string, payload map[string]any) (int, error) {
	msg, err := encodeRelayedData(payload, deviceID)
	if err != nil {
		return 0, fmt.Errorf("encode message: %w", err)
	}
	sent := r.registry.Broadcast(accountID, msg)
	metrics.RelayMessagesSent.WithLabelValues("message").Add(float64(sent))
	return sent, nil
}
