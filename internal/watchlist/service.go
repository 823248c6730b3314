// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package watchlist manages the per-account list of saved titles.
//
// Add rejects a title that is already present with apperr.ErrAlreadyInList.
// Remove of an absent title succeeds and returns the unchanged list.
package watchlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/events"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
)

// Service implements watchlist operations on top of an AccountStore.
type Service struct {
	store  store.AccountStore
	events events.Publisher
	now    func() time.Time
}

// NewService creates a watchlist service. A nil publisher disables events.
func NewService(accounts store.AccountStore, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{store: accounts, events: publisher, now: time.Now}
}

// Add appends entry to the caller's list and returns the updated list.
func (s *Service) Add(ctx context.Context, identity *models.Identity, entry models.WatchlistEntry) ([]models.WatchlistEntry, error) {
	if identity == nil {
		return nil, apperr.ErrUnauthorized
	}
	entry.TitleID = strings.TrimSpace(entry.TitleID)
	if entry.TitleID == "" {
		return nil, apperr.NewValidationError("", apperr.FieldError{Field: "titleId", Message: "titleId is required"})
	}

	list, err := s.store.AddEntry(ctx, identity.AccountID, entry)
	if err != nil {
		metrics.RecordWatchlistMutation(events.ActionAdded, resultLabel(err))
		return nil, err
	}
	metrics.RecordWatchlistMutation(events.ActionAdded, "success")

	list = models.NonNilWatchlist(list)
	s.publish(ctx, identity.AccountID, events.ActionAdded, entry.TitleID, list)
	return list, nil
}

// Remove deletes titleID from the caller's list and returns the updated list.
func (s *Service) Remove(ctx context.Context, identity *models.Identity, titleID string) ([]models.WatchlistEntry, error) {
	if identity == nil {
		return nil, apperr.ErrUnauthorized
	}
	titleID = strings.TrimSpace(titleID)
	if titleID == "" {
		return nil, apperr.NewValidationError("", apperr.FieldError{Field: "titleId", Message: "titleId is required"})
	}

	list, err := s.store.RemoveEntry(ctx, identity.AccountID, titleID)
	if err != nil {
		metrics.RecordWatchlistMutation(events.ActionRemoved, resultLabel(err))
		return nil, err
	}
	metrics.RecordWatchlistMutation(events.ActionRemoved, "success")

	list = models.NonNilWatchlist(list)
	s.publish(ctx, identity.AccountID, events.ActionRemoved, titleID, list)
	return list, nil
}

// List returns the caller's list in insertion order.
func (s *Service) List(ctx context.Context, identity *models.Identity) ([]models.WatchlistEntry, error) {
	if identity == nil {
		return nil, apperr.ErrUnauthorized
	}
	acct, err := s.store.FindByID(ctx, identity.AccountID)
	if err != nil {
		return nil, err
	}
	return models.NonNilWatchlist(acct.Watchlist), nil
}

func (s *Service) publish(ctx context.Context, accountID, action, titleID string, list []models.WatchlistEntry) {
	ev := events.WatchlistChanged{
		AccountID:  accountID,
		Action:     action,
		TitleID:    titleID,
		Watchlist:  list,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, ev.Topic(), ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("topic", ev.Topic()).Msg("failed to publish watchlist event")
	}
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, apperr.ErrAlreadyInList):
		return "duplicate"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
