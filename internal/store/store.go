// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/metrics"
	"github.com/tomtom215/marquee/internal/models"
)

// AccountStore persists accounts and their watchlists.
//
// Implementations report domain outcomes with apperr sentinels:
// ErrNotFound, ErrDuplicateEmail, ErrDuplicateUsername, ErrAlreadyInList
// and ErrStoreUnavailable for transient infrastructure failures.
type AccountStore interface {
	// CreateAccount inserts a new account and returns it with ID and
	// CreatedAt populated.
	CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error)

	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByUsername(ctx context.Context, username string) (*models.Account, error)

	// AddEntry appends entry unless an entry with the same TitleID exists.
	// The check and the append are a single atomic operation.
	AddEntry(ctx context.Context, accountID string, entry models.WatchlistEntry) ([]models.WatchlistEntry, error)

	// RemoveEntry removes every entry with titleID. Removing an absent
	// title succeeds and returns the unchanged list.
	RemoveEntry(ctx context.Context, accountID, titleID string) ([]models.WatchlistEntry, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Operation names used as metric labels.
const (
	opCreate         = "create_account"
	opFindByID       = "find_by_id"
	opFindByEmail    = "find_by_email"
	opFindByUsername = "find_by_username"
	opAddEntry       = "add_entry"
	opRemoveEntry    = "remove_entry"
	opPing           = "ping"
)

// ErrorClass maps an error to a low-cardinality label. It returns "" for nil
// and for expected domain outcomes.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrAlreadyInList):
		return ""
	case errors.Is(err, apperr.ErrDuplicateEmail), errors.Is(err, apperr.ErrDuplicateUsername):
		return "duplicate"
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return "unavailable"
	default:
		return "other"
	}
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreOperation(op, time.Since(start), ErrorClass(err))
}

func cloneEntries(list []models.WatchlistEntry) []models.WatchlistEntry {
	out := make([]models.WatchlistEntry, len(list))
	copy(out, list)
	return out
}
