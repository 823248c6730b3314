// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/models"
)

func TestMemoryStore_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) AccountStore {
		return NewMemoryStore()
	})
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	acc, _ := s.CreateAccount(ctx, &models.Account{Username: "alice", Email: "a@x.io"})
	list, _ := s.AddEntry(ctx, acc.ID, models.WatchlistEntry{TitleID: "tt1", Title: "Original"})

	list[0].Title = "Mutated"

	got, _ := s.FindByID(ctx, acc.ID)
	if got.Watchlist[0].Title != "Original" {
		t.Errorf("store state leaked through returned slice: %q", got.Watchlist[0].Title)
	}
}

func TestMemoryStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.SetUnavailable(true)

	if err := s.Ping(ctx); !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Errorf("Ping() error = %v, want ErrStoreUnavailable", err)
	}
	if _, err := s.FindByEmail(ctx, "a@x.io"); !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Errorf("FindByEmail() error = %v, want ErrStoreUnavailable", err)
	}
	if _, err := s.CreateAccount(ctx, &models.Account{Username: "u", Email: "e"}); !errors.Is(err, apperr.ErrStoreUnavailable) {
		t.Errorf("CreateAccount() error = %v, want ErrStoreUnavailable", err)
	}

	s.SetUnavailable(false)
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping() after recovery error = %v", err)
	}
}

func TestErrorClass(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{apperr.ErrNotFound, ""},
		{apperr.ErrAlreadyInList, ""},
		{apperr.ErrDuplicateEmail, "duplicate"},
		{apperr.ErrDuplicateUsername, "duplicate"},
		{apperr.ErrStoreUnavailable, "unavailable"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		if got := ErrorClass(tt.err); got != tt.want {
			t.Errorf("ErrorClass(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
