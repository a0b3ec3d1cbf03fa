// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package services

import (
	"context"
	"time"

	"github.com/tomtom215/rocksky-relay/internal/logging"
)

// MaintenanceTask is one unit of periodic storage upkeep.
type MaintenanceTask func(ctx context.Context) error

// MaintenanceService runs a task on a fixed interval until its context is
// canceled. A failing task is logged and retried on the next tick; it does
// not crash the service, so one bad run never triggers supervisor backoff.
//
// Used for the badger value-log GC and the DuckDB checkpoint:
//
//	tree.AddDataService(services.NewMaintenanceService("badger-gc", interval,
//	    func(context.Context) error { return store.RunGC() }))
type MaintenanceService struct {
	name     string
	interval time.Duration
	task     MaintenanceTask
}

// NewMaintenanceService creates a service running task every interval. A
// non-positive interval means one minute.
func NewMaintenanceService(name string, interval time.Duration, task MaintenanceTask) *MaintenanceService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &MaintenanceService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (m *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	log := logging.WithComponent(m.name)
	log.Debug().Dur("interval", m.interval).Msg("maintenance service started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := m.task(ctx); err != nil {
				log.Error().Err(err).Msg("maintenance task failed")
				continue
			}
			log.Debug().Dur("duration", time.Since(start)).Msg("maintenance task completed")
		}
	}
}

func (m *MaintenanceService) String() string {
	return m.name
}
