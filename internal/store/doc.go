// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package store persists accounts and their watchlists.

Two AccountStore implementations are provided:

  - MongoStore: the production store. One client is created at startup and
    reused; email and username carry unique indexes, and watchlist mutations
    are single conditional updates ($push guarded by $ne, and $pull).
  - MemoryStore: a mutex-guarded map used by tests and by the "memory" driver.

Readiness is an explicit State value. The Connector, run under the
supervisor tree, pings the store on an interval, marks the State unavailable
when a ping fails and rebuilds the connection after a fixed delay. The HTTP
layer attaches the State to every request with ContextWithState and answers
503 while it reports unavailable.

Errors are reported as apperr sentinels so callers never inspect driver
types.
*/
package store
