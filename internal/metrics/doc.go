// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package metrics declares the Prometheus collectors exported at /metrics.
//
// Collectors are registered on the default registry through promauto, so
// importing the package is enough to expose them. Helper functions keep
// label sets consistent across call sites:
//
//	start := time.Now()
//	err := store.AddEntry(ctx, id, entry)
//	metrics.RecordStoreOperation("add_entry", time.Since(start), store.ErrorClass(err))
//
// All metric names share the marquee_ prefix.
package metrics
