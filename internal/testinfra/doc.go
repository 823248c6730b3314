// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package testinfra provides containers for integration tests.
//
// Everything here is behind the integration build tag and uses
// testcontainers-go to run real dependencies:
//
//	func TestMongoStore(t *testing.T) {
//	    mongo := testinfra.StartMongo(t)
//	    s, err := store.NewMongoStore(ctx, &config.StoreConfig{URI: mongo.URI, ...})
//	    // ...
//	}
//
// Tests skip when Docker is unavailable. Run them with:
//
//	go test -tags integration ./...
package testinfra
