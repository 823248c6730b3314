// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package models defines the data structures shared across Marquee.

Key types:

  - Account: a registered user with a hashed secret and a watchlist
  - WatchlistEntry: a denormalized snapshot of a saved title
  - Identity: the verified claims carried by a bearer token
  - PublicAccount / AccountWithList: client-facing projections

Account never serializes SecretHash. Projections always render an empty
watchlist as [] rather than null.
*/
package models
