// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package websocket pushes live watchlist updates to connected clients.

Each connection belongs to one account. The Hub keeps connections grouped by
account and SendToAccount fans a pre-encoded frame out to every connection
of that account. The events package calls it from the live-update consumer.

Frames sent to clients:

	{"type":"watchlist","data":{"action":"added","titleId":"tt0133093","myList":[...]}}

Clients may send {"type":"ping"} and receive {"type":"pong"}. Protocol-level
pings are sent every 54 seconds and a connection that misses pongs for 60
seconds is closed.

The hub runs under the supervisor. When its context is cancelled every
connection is closed; clients are expected to reconnect.
*/
package websocket
