// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package catalog proxies title search and detail lookups to the upstream
movie-data provider (OMDB).

Every call goes through, in order:

  - a TTL response cache (internal/cache), keyed by operation and query
  - a token-bucket limiter (golang.org/x/time/rate) bounding outbound rate
  - a circuit breaker (sony/gobreaker) that opens at a 60% failure rate over
    at least 10 requests

A provider answer of Response "False" (no match, bad id) is surfaced as
*apperr.UpstreamError carrying the provider's message but does not count as
a breaker failure. Transport errors and non-200 statuses do.

Search pages hold 10 results; TotalPages is ceil(TotalResults / 10).
*/
package catalog
