// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

/*
Package account implements registration, login, logout and profile lookup.

Registration resolves the username (username, then name, then the local part
of the email), validates the result, rejects duplicate emails before
duplicate usernames and stores a bcrypt hash. The store's unique indexes
settle concurrent registrations.

Login returns apperr.ErrInvalidCredentials for both unknown emails and wrong
passwords. When a Lockout is configured, repeated failures for one email
lock it for a fixed duration and further attempts fail with
apperr.ErrLockedOut.

Successful registrations publish events.TopicAccountRegistered. Publish
failures are logged and never fail the request.
*/
package account
