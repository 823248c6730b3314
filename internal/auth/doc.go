// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package auth issues and verifies bearer tokens and guards protected routes.

Tokens are HS256 JWTs carrying the account id, username and email plus
iat, exp and a random jti. They are stateless: nothing is stored on issue.
When revocation is enabled, logout records the jti in a RevocationList
(memory or BadgerDB with per-key TTL) and the Gateway rejects it until the
token would have expired anyway.

The Gateway reads the x-auth-token header first and falls back to
Authorization: Bearer. It is the only place a token is checked:

	gw := auth.NewGateway(tokens, revocations, writeAuthError)
	r.With(gw.Authenticate).Get("/auth/myList", h.List)

Handlers read the verified identity with IdentityFromContext.

Lockout throttles failed logins per email with a golang.org/x/time/rate
token bucket. Passwords are hashed with bcrypt.
*/
package auth
