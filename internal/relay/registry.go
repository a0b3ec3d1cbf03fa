// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package relay

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/metrics"
)

// Sender is the outbound half of one device connection. Send must not
// block: it queues msg and reports false if the connection is gone or its
// queue is full.
type Sender interface {
	Send(msg []byte) bool
}

// Registry tracks which devices are connected and which account owns them.
//
// A device id is present in the device map if and only if it is present in
// exactly one account's device list. Both are updated under one lock so no
// caller can observe a partial state. An account with no devices has no
// entry at all.
type Registry struct {
	mu       sync.RWMutex
	devices  map[string]Sender
	labels   map[string]string
	accounts map[string][]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices:  make(map[string]Sender),
		labels:   make(map[string]string),
		accounts: make(map[string][]string),
	}
}

// Register adds a device for accountID and returns its new id.
func (r *Registry) Register(accountID, label string, conn Sender) string {
	deviceID := uuid.New().String()

	r.mu.Lock()
	r.devices[deviceID] = conn
	r.labels[deviceID] = label
	r.accounts[accountID] = append(r.accounts[accountID], deviceID)
	devices, accounts := len(r.devices), len(r.accounts)
	r.mu.Unlock()

	metrics.UpdateRegistryGauges(devices, accounts)
	return deviceID
}

// Unregister removes a device. Removing the last device of an account
// removes the account. A device id that is not registered under accountID
// is ignored.
func (r *Registry) Unregister(deviceID, accountID string) {
	r.mu.Lock()
	ids := r.accounts[accountID]
	i := slices.Index(ids, deviceID)
	if i < 0 {
		r.mu.Unlock()
		return
	}
	delete(r.devices, deviceID)
	delete(r.labels, deviceID)
	if ids = slices.Delete(ids, i, i+1); len(ids) == 0 {
		delete(r.accounts, accountID)
	} else {
		r.accounts[accountID] = ids
	}
	devices, accounts := len(r.devices), len(r.accounts)
	r.mu.Unlock()

	metrics.UpdateRegistryGauges(devices, accounts)
}

// NotifyPeers tells every other device of accountID that newDeviceID has
// joined. It returns how many peers were notified.
func (r *Registry) NotifyPeers(accountID, newDeviceID, label string) int {
	msg, err := encodePeerJoined(newDeviceID, label)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to encode peer notification")
		return 0
	}

	notified := 0
	for _, id := range r.DevicesOf(accountID) {
		if id == newDeviceID {
			continue
		}
		if r.Send(accountID, id, msg) {
			notified++
		}
	}
	metrics.RelayMessagesSent.WithLabelValues("peer_joined").Add(float64(notified))
	return notified
}

// DevicesOf returns a copy of the account's device ids in registration
// order, or nil if the account has none.
func (r *Registry) DevicesOf(accountID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.accounts[accountID])
}

// Resolve returns the connection of deviceID if it belongs to accountID.
// Devices of other accounts never resolve.
func (r *Registry) Resolve(accountID, deviceID string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolveLocked(accountID, deviceID)
}

func (r *Registry) resolveLocked(accountID, deviceID string) (Sender, bool) {
	if !slices.Contains(r.accounts[accountID], deviceID) {
		return nil, false
	}
	conn, ok := r.devices[deviceID]
	return conn, ok
}

// Send queues msg for one device. The device is resolved under the same
// lock as the send, so a device unregistered in the meantime is skipped
// rather than written to.
func (r *Registry) Send(accountID, deviceID string, msg []byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.resolveLocked(accountID, deviceID)
	if !ok || !conn.Send(msg) {
		metrics.RelayMessagesUndelivered.Inc()
		return false
	}
	return true
}

// Broadcast queues msg for every device of accountID and returns how many
// accepted it.
func (r *Registry) Broadcast(accountID string, msg []byte) int {
	sent := 0
	for _, id := range r.DevicesOf(accountID) {
		if r.Send(accountID, id, msg) {
			sent++
		}
	}
	return sent
}

// Label returns the client name a device registered with.
func (r *Registry) Label(deviceID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	label, ok := r.labels[deviceID]
	return label, ok
}

// Counts returns the number of registered devices and accounts.
func (r *Registry) Counts() (devices, accounts int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices), len(r.accounts)
}
