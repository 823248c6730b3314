// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package middleware provides net/http middleware shared by the HTTP router.

All middleware uses the func(http.Handler) http.Handler shape so it composes
with chi's Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)

RequestID must run first so later middleware sees the request ID in the
logging context. PrometheusMetrics labels by chi route pattern rather than
raw path.
*/
package middleware
