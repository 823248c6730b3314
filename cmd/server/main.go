// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/tomtom215/marquee/docs" // registers the swagger document
	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/api"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/supervisor"
	"github.com/tomtom215/marquee/internal/supervisor/services"
	"github.com/tomtom215/marquee/internal/watchlist"
	ws "github.com/tomtom215/marquee/internal/websocket"
)

const cacheJanitorInterval = time.Minute

// storeBackend is what the rest of main needs from either store driver.
type storeBackend interface {
	store.AccountStore
	store.Reconnector
}

//nolint:gocyclo // sequential setup steps
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("store_driver", cfg.Store.Driver).
		Str("events_driver", cfg.Events.Driver).
		Bool("catalog_enabled", cfg.Catalog.Enabled()).
		Bool("revocation_enabled", cfg.Security.RevocationEnabled).
		Msg("Starting Marquee with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === Store ===
	accounts, state := openStore(ctx, &cfg.Store)
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		if err := accounts.Close(closeCtx); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	// === Auth ===
	tokens, err := auth.NewTokenManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize token manager")
	}
	revocation, err := auth.NewRevocationList(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize revocation list")
	}
	if revocation != nil {
		defer func() {
			if err := revocation.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing revocation list")
			}
		}()
	}
	lockout := auth.NewLockoutFromConfig(&cfg.Security)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (RATE_LIMIT_DISABLED=true)")
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("CORS is configured with a wildcard origin; any site can call the API")
			break
		}
	}

	// === Events ===
	wmLogger := events.NewWatermillLogger()
	bus, err := events.NewBus(&cfg.Events, wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	hub := ws.NewHub()

	eventRouter, err := events.NewRouter(bus, events.DefaultRouterConfig(), wmLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event router")
	}
	eventRouter.AddAuditConsumer()
	eventRouter.AddLiveUpdateConsumer(hub)

	// === Domain services ===
	accountOpts := []account.Option{
		account.WithLockout(lockout),
		account.WithPublisher(bus),
	}
	if revocation != nil {
		accountOpts = append(accountOpts, account.WithRevocation(revocation))
	}
	accountService := account.NewService(accounts, tokens, accountOpts...)
	watchlistService := watchlist.NewService(accounts, bus)

	// === Catalog ===
	var catalogProvider api.CatalogProvider
	catalogClient, err := catalog.NewClient(&cfg.Catalog)
	switch {
	case errors.Is(err, catalog.ErrNotConfigured):
		logging.Info().Msg("Catalog proxy disabled (OMDB_API_KEY not set)")
	case err != nil:
		logging.Fatal().Err(err).Msg("Failed to initialize catalog client")
	default:
		catalogProvider = catalogClient
		logging.Info().Str("base_url", cfg.Catalog.BaseURL).Msg("Catalog proxy enabled")
	}

	// === HTTP ===
	handler := api.NewHandler(api.Dependencies{
		Accounts:    accountService,
		Watchlist:   watchlistService,
		Catalog:     catalogProvider,
		Hub:         hub,
		State:       state,
		Pinger:      accounts,
		CORSOrigins: cfg.Security.CORSOrigins,
	})
	router := api.NewRouter(handler, api.NewGateway(tokens, revocation), api.ChiMiddlewareConfigFromSecurity(&cfg.Security))

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := &http.Server{
		Addr:              addr,
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}

	// === Supervisor tree ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(store.NewConnector(
		accounts,
		state,
		cfg.Store.HealthInterval,
		cfg.Store.ReconnectDelay,
		cfg.Store.ServerSelectionTimeout,
	))
	if catalogClient != nil {
		tree.AddDataService(services.NewFuncService("catalog-cache-janitor", func(ctx context.Context) error {
			catalogClient.Cache().Run(ctx, cacheJanitorInterval)
			return ctx.Err()
		}))
	}
	tree.AddMessagingService(hub)
	tree.AddMessagingService(eventRouter)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", addr).Msg("Marquee API listening")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Marquee stopped gracefully")
}

// openStore builds the configured store. An unreachable Mongo at startup is
// not fatal: the store starts unavailable and the connector keeps retrying.
func openStore(ctx context.Context, cfg *config.StoreConfig) (storeBackend, *store.State) {
	if cfg.Driver == "memory" {
		logging.Warn().Msg("Using in-memory store; accounts are lost on restart")
		return store.NewMemoryStore(), store.NewState(true)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ServerSelectionTimeout+cfg.ConnectTimeout)
	defer cancel()

	mongoStore, err := store.NewMongoStore(connectCtx, cfg)
	if mongoStore == nil {
		logging.Fatal().Err(err).Msg("Failed to initialize MongoDB client")
	}
	if err != nil {
		logging.Warn().Err(err).Msg("MongoDB not reachable at startup; will keep retrying")
		return mongoStore, store.NewState(false)
	}

	logging.Info().Str("database", cfg.Database).Str("collection", cfg.Collection).Msg("MongoDB connected")
	return mongoStore, store.NewState(true)
}
