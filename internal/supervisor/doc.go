// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package supervisor runs Marquee's long-lived services under a suture v4
tree.

	marquee
	├── data-layer
	│   ├── store-connector
	│   └── catalog-cache-janitor (when the catalog is configured)
	├── messaging-layer
	│   ├── websocket-hub
	│   └── event-router
	└── api-layer
	    └── http-server

Each layer restarts its own children with exponential backoff. Supervisor
events (start, stop, panic, backoff) are logged through sutureslog, which
writes to the zerolog-backed slog handler from the logging package.

Usage in main:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(connector)
	tree.AddMessagingService(hub)
	tree.AddMessagingService(eventRouter)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)
*/
package supervisor
