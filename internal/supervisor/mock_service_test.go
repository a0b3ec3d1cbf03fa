// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// MockService is a controllable suture.Service for supervisor tests. It
// fails its first FailTimes runs, then runs until canceled.
type MockService struct {
	name      string
	failTimes int32
	starts    atomic.Int32
	stops     atomic.Int32
}

// NewMockService creates a service that fails failTimes times before
// running normally.
func NewMockService(name string, failTimes int) *MockService {
	return &MockService{name: name, failTimes: int32(failTimes)}
}

// Serve implements suture.Service.
func (m *MockService) Serve(ctx context.Context) error {
	n := m.starts.Add(1)
	defer m.stops.Add(1)

	if n <= m.failTimes {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

// StartCount returns how many times Serve was called.
func (m *MockService) StartCount() int32 {
	return m.starts.Load()
}

// StopCount returns how many times Serve returned.
func (m *MockService) StopCount() int32 {
	return m.stops.Load()
}

func (m *MockService) String() string {
	return m.name
}
