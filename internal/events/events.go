// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"time"

	"github.com/tomtom215/marquee/internal/models"
)

// Topics. They are valid NATS subjects as well as gochannel topic names.
const (
	TopicAccountRegistered = "account.registered"
	TopicWatchlistAdded    = "watchlist.added"
	TopicWatchlistRemoved  = "watchlist.removed"
)

// Watchlist actions carried by WatchlistChanged.
const (
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// Metadata keys set on every message.
const (
	MetadataEventType = "event_type"
	MetadataRequestID = "request_id"
	MetadataAccountID = "account_id"
)

// AccountRegistered is published after a successful registration.
type AccountRegistered struct {
	AccountID  string    `json:"accountId"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurredAt"`
}

// WatchlistChanged is published after a successful add or remove.
// Watchlist is the list as it stood after the change.
type WatchlistChanged struct {
	AccountID  string                  `json:"accountId"`
	Action     string                  `json:"action"`
	TitleID    string                  `json:"titleId"`
	Watchlist  []models.WatchlistEntry `json:"watchlist"`
	OccurredAt time.Time               `json:"occurredAt"`
}

// Topic returns the topic for the change's action.
func (e WatchlistChanged) Topic() string {
	if e.Action == ActionRemoved {
		return TopicWatchlistRemoved
	}
	return TopicWatchlistAdded
}
