// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package services adapts values without a Serve method to suture.Service.
//
// Types that already implement Serve(ctx) error and String() string, such as
// store.Connector, websocket.Hub and events.Router, are added to the tree
// directly.
package services
