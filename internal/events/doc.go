// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package events carries domain events between the services and their
consumers using Watermill.

Services publish three topics after a successful change:

	account.registered  AccountRegistered
	watchlist.added     WatchlistChanged
	watchlist.removed   WatchlistChanged

The Bus uses an in-process GoChannel by default and core NATS subjects when
events.driver is "nats". Publishing is best effort: services log a failed
publish and still answer the request.

The Router hosts two consumers. The audit consumer logs every event once
per cluster through a NATS queue group. The live-update consumer receives
every watchlist event on every instance and hands a frame to the websocket
hub, which writes it to the owner's open sockets.
*/
package events
