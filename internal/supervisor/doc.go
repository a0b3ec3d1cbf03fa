// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

/*
Package supervisor provides process supervision for the relay using suture v4.

The tree organizes long-running services into three layers:

	RootSupervisor ("rocksky-relay")
	├── DataSupervisor ("data-layer")
	│   ├── MaintenanceService "badger-gc" (CACHE_BACKEND=badger)
	│   └── MaintenanceService "duckdb-checkpoint"
	├── MessagingSupervisor ("messaging-layer")
	│   └── RelayHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts failures independently, so a misbehaving maintenance
task backs off on its own while device sockets stay connected.

Supervisor events (start, stop, failure, backoff) are logged through
sutureslog using the zerolog-backed slog handler from internal/logging:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewRelayHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	err = tree.Serve(ctx)

Canceling ctx stops every layer. Services that miss the shutdown timeout
are listed by UnstoppedServiceReport.
*/
package supervisor
