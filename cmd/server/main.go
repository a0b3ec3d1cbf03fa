// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/rocksky-relay/internal/api"
	"github.com/tomtom215/rocksky-relay/internal/auth"
	"github.com/tomtom215/rocksky-relay/internal/cache"
	"github.com/tomtom215/rocksky-relay/internal/config"
	"github.com/tomtom215/rocksky-relay/internal/database"
	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/relay"
	"github.com/tomtom215/rocksky-relay/internal/supervisor"
	"github.com/tomtom215/rocksky-relay/internal/supervisor/services"
	ws "github.com/tomtom215/rocksky-relay/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Relay exited with error")
	}
}

//nolint:gocyclo // sequential startup wiring
func run() error {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
		Output:    os.Stderr,
	})

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("cache_backend", cfg.Cache.Backend).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Rocksky relay")

	store, err := cache.Open(&cfg.Cache)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	if cfg.Database.SeedDemoData {
		logging.Info().Msg("Demo catalog seeding enabled (SEED_DEMO_DATA=true)")
		if err := db.SeedDemoData(context.Background()); err != nil {
			return err
		}
	}

	tracks := database.NewCircuitBreakerStore(db, cfg.Database.CircuitBreakerTimeout)

	verifier, err := auth.NewVerifier(&cfg.Security)
	if err != nil {
		return err
	}
	if cfg.Database.SeedDemoData {
		token, err := verifier.GenerateToken(database.DemoAccountDID, 24*time.Hour)
		if err != nil {
			return err
		}
		logging.Warn().
			Str("did", database.DemoAccountDID).
			Str("token", token).
			Msg("Demo device token issued; never enable SEED_DEMO_DATA in production")
	}

	registry := relay.NewRegistry()
	enricher := relay.NewEnricher(store, tracks, &cfg.Cache)
	hub := ws.NewHub(relay.New(registry, enricher, verifier, &cfg.Relay), &cfg.Relay)

	handler := api.NewHandler(hub, registry, tracks, store, cfg, version)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	// Data layer
	if badger, ok := store.(*cache.BadgerStore); ok {
		tree.AddDataService(services.NewMaintenanceService("badger-gc", cfg.Cache.BadgerGCInterval,
			func(context.Context) error { return badger.RunGC() }))
	}
	if cfg.Database.CheckpointInterval > 0 {
		tree.AddDataService(services.NewMaintenanceService("duckdb-checkpoint", cfg.Database.CheckpointInterval, db.Checkpoint))
	}

	// Messaging layer
	tree.AddMessagingService(services.NewRelayHubService(hub))

	// API layer
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Msg("Starting supervisor tree...")
	err = tree.Serve(ctx)

	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within shutdown timeout")
		}
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Relay stopped")
	return nil
}
