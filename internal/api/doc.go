// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package api serves the Marquee HTTP interface using the chi router.

Account and watchlist routes live under /auth and, for older clients,
under /api/auth. Protected routes pass through auth.Gateway, which accepts
the token from the x-auth-token header or an Authorization bearer header.
Every non-2xx response has the body {"message": "..."}; validation
failures add an "errors" array with per-field detail.

Error mapping happens once, in writeError:

	ValidationError, duplicates, bad credentials, already listed  400
	missing, invalid or revoked token                             401
	account not found                                             404
	login locked out                                              429
	store unavailable, catalog not configured                     503
	catalog provider failure                                      502
	anything else                                                 500

Routes backed by the document store are wrapped in Readiness, which
answers 503 while the store connector reports the store as down. Health,
metrics, catalog and swagger routes stay available.
*/
package api
