// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package main is the entry point for the Marquee server.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, optional YAML file, environment)
//  2. Document store (MongoDB, or the in-memory driver) and its readiness state
//  3. Token manager, optional revocation list, login lockout
//  4. Event bus (in-process or NATS) and its router with the audit and
//     live-update consumers
//  5. Account, watchlist and catalog services
//  6. HTTP router and server
//  7. Supervisor tree, which owns every long-running service
//
// # Configuration
//
// The most common environment variables:
//
//	PORT=5000
//	MONGODB_URI=mongodb://127.0.0.1:27017/netflix-app
//	JWT_SECRET=...               # required
//	OMDB_API_KEY=...             # enables /catalog routes
//	EVENTS_DRIVER=memory|nats
//	REVOCATION_ENABLED=true      # makes /auth/logout revoke tokens
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The HTTP server drains
// in-flight requests within the shutdown timeout, then the hub closes every
// websocket and the store connection is released.
package main
