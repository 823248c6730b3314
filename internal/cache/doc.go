// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package cache provides a small TTL cache used in front of the upstream
// catalog provider.
//
// Entries expire lazily on Get and in bulk when Run is active. The cache is
// bounded; when full, the entry closest to expiry is evicted. Hits and
// misses are exported as marquee_cache_hits_total and
// marquee_cache_misses_total.
package cache
