// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// AuditHandler writes one structured audit line per event. Malformed
// payloads are logged and acknowledged so they are not redelivered.
func AuditHandler(msg *message.Message) error {
	topic := msg.Metadata.Get(MetadataEventType)
	logger := logging.WithComponent("audit")

	event := logger.Info().
		Str("event", topic).
		Str("message_id", msg.UUID).
		Str("request_id", msg.Metadata.Get(MetadataRequestID))

	var err error
	switch topic {
	case TopicAccountRegistered:
		var ev AccountRegistered
		if err = json.Unmarshal(msg.Payload, &ev); err == nil {
			event = event.Str("account_id", ev.AccountID).Str("username", ev.Username)
		}
	case TopicWatchlistAdded, TopicWatchlistRemoved:
		var ev WatchlistChanged
		if err = json.Unmarshal(msg.Payload, &ev); err == nil {
			event = event.
				Str("account_id", ev.AccountID).
				Str("title_id", ev.TitleID).
				Int("watchlist_size", len(ev.Watchlist))
		}
	}

	metrics.RecordEventHandled("audit", err)
	if err != nil {
		logger.Warn().Err(err).Str("event", topic).Str("message_id", msg.UUID).Msg("discarding malformed event")
		return nil
	}

	event.Msg("audit")
	return nil
}

// Notifier delivers a payload to every live connection of an account.
// Satisfied by *websocket.Hub.
type Notifier interface {
	SendToAccount(accountID string, payload []byte) int
}

// LiveUpdate is the frame pushed to websocket clients.
type LiveUpdate struct {
	Type string         `json:"type"`
	Data LiveUpdateData `json:"data"`
}

// LiveUpdateData describes one watchlist change.
type LiveUpdateData struct {
	Action  string                  `json:"action"`
	TitleID string                  `json:"titleId"`
	MyList  []models.WatchlistEntry `json:"myList,omitempty"`
}

// LiveUpdateHandler pushes watchlist changes to the owning account's sockets.
func LiveUpdateHandler(n Notifier) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var ev WatchlistChanged
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			metrics.RecordEventHandled("live_update", err)
			logging.Warn().Err(err).Str("message_id", msg.UUID).Msg("discarding malformed watchlist event")
			return nil
		}

		frame, err := json.Marshal(LiveUpdate{
			Type: "watchlist",
			Data: LiveUpdateData{
				Action:  ev.Action,
				TitleID: ev.TitleID,
				MyList:  ev.Watchlist,
			},
		})
		if err != nil {
			metrics.RecordEventHandled("live_update", err)
			return err
		}

		delivered := n.SendToAccount(ev.AccountID, frame)
		metrics.RecordEventHandled("live_update", nil)

		logging.Debug().
			Str("account_id", ev.AccountID).
			Str("action", ev.Action).
			Str("title_id", ev.TitleID).
			Int("sockets", delivered).
			Msg("live update delivered")
		return nil
	}
}
