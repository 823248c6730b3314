// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// @title Marquee API
// @version 1.0
// @description Accounts and per-user movie watchlists for a streaming catalog front end.
// @description
// @description ## Authentication
// @description
// @description Register or log in to receive a token. Send it on protected routes in the `x-auth-token` header
// @description (or as `Authorization: Bearer <token>`). Tokens expire after 7 days by default.
// @description
// @description ## Errors
// @description
// @description Every non-2xx response has the body `{"message": "..."}`. Validation failures add
// @description `"errors": [{"field": "...", "message": "..."}]`.
// @description
// @description ## Compatibility
// @description
// @description Every `/auth/...` route is also served at `/api/auth/...`.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/marquee/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:5000
// @BasePath /
// @schemes http https
//
// @securityDefinitions.apikey TokenAuth
// @in header
// @name x-auth-token
// @description Token returned by /auth/register or /auth/login.
//
// @tag.name Auth
// @tag.description Registration, login, profile and logout
//
// @tag.name Watchlist
// @tag.description The caller's saved titles and live change stream
//
// @tag.name Catalog
// @tag.description Title search and detail proxied from the movie-data provider
//
// @tag.name Health
// @tag.description Service banner and probes
package main
