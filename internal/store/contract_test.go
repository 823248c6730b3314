// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/models"
)

// runStoreContract exercises the AccountStore behavior every implementation
// must share. The integration test runs it against MongoDB.
func runStoreContract(t *testing.T, newStore func(t *testing.T) AccountStore) {
	ctx := context.Background()

	t.Run("create and find", func(t *testing.T) {
		s := newStore(t)
		created, err := s.CreateAccount(ctx, &models.Account{Username: "alice", Email: "a@x.io", SecretHash: "h"})
		if err != nil {
			t.Fatalf("CreateAccount() error = %v", err)
		}
		if created.ID == "" {
			t.Fatal("CreateAccount() returned empty ID")
		}
		if created.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
		if len(created.Watchlist) != 0 {
			t.Errorf("new watchlist length = %d, want 0", len(created.Watchlist))
		}

		for name, find := range map[string]func() (*models.Account, error){
			"by id":       func() (*models.Account, error) { return s.FindByID(ctx, created.ID) },
			"by email":    func() (*models.Account, error) { return s.FindByEmail(ctx, "a@x.io") },
			"by username": func() (*models.Account, error) { return s.FindByUsername(ctx, "alice") },
		} {
			got, err := find()
			if err != nil {
				t.Fatalf("%s: error = %v", name, err)
			}
			if got.ID != created.ID || got.SecretHash != "h" {
				t.Errorf("%s: got %+v", name, got)
			}
		}
	})

	t.Run("not found", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.FindByEmail(ctx, "missing@x.io"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("FindByEmail() error = %v, want ErrNotFound", err)
		}
		if _, err := s.FindByID(ctx, "not-an-object-id"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("FindByID(malformed) error = %v, want ErrNotFound", err)
		}
		if _, err := s.FindByID(ctx, "65a000000000000000000000"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("FindByID(unknown) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unique email and username", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.CreateAccount(ctx, &models.Account{Username: "alice", Email: "a@x.io"}); err != nil {
			t.Fatalf("first create: %v", err)
		}
		if _, err := s.CreateAccount(ctx, &models.Account{Username: "other", Email: "a@x.io"}); !errors.Is(err, apperr.ErrDuplicateEmail) {
			t.Errorf("duplicate email error = %v, want ErrDuplicateEmail", err)
		}
		if _, err := s.CreateAccount(ctx, &models.Account{Username: "alice", Email: "b@x.io"}); !errors.Is(err, apperr.ErrDuplicateUsername) {
			t.Errorf("duplicate username error = %v, want ErrDuplicateUsername", err)
		}
	})

	t.Run("add preserves order and rejects duplicates", func(t *testing.T) {
		s := newStore(t)
		acc, _ := s.CreateAccount(ctx, &models.Account{Username: "alice", Email: "a@x.io"})

		first := models.WatchlistEntry{TitleID: "tt1", Title: "One", Year: "2001", Kind: "movie", PosterURL: "http://p/1"}
		second := models.WatchlistEntry{TitleID: "tt2", Title: "Two"}

		if _, err := s.AddEntry(ctx, acc.ID, first); err != nil {
			t.Fatalf("AddEntry(tt1) error = %v", err)
		}
		list, err := s.AddEntry(ctx, acc.ID, second)
		if err != nil {
			t.Fatalf("AddEntry(tt2) error = %v", err)
		}
		if len(list) != 2 || list[0] != first || list[1] != second {
			t.Errorf("list = %+v", list)
		}

		if _, err := s.AddEntry(ctx, acc.ID, first); !errors.Is(err, apperr.ErrAlreadyInList) {
			t.Errorf("re-add error = %v, want ErrAlreadyInList", err)
		}

		got, _ := s.FindByID(ctx, acc.ID)
		if len(got.Watchlist) != 2 {
			t.Errorf("persisted length = %d, want 2", len(got.Watchlist))
		}
	})

	t.Run("add to missing account", func(t *testing.T) {
		s := newStore(t)
		_, err := s.AddEntry(ctx, "65a000000000000000000000", models.WatchlistEntry{TitleID: "tt1"})
		if !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		acc, _ := s.CreateAccount(ctx, &models.Account{Username: "alice", Email: "a@x.io"})
		_, _ = s.AddEntry(ctx, acc.ID, models.WatchlistEntry{TitleID: "tt1"})
		_, _ = s.AddEntry(ctx, acc.ID, models.WatchlistEntry{TitleID: "tt2"})

		list, err := s.RemoveEntry(ctx, acc.ID, "tt1")
		if err != nil {
			t.Fatalf("RemoveEntry() error = %v", err)
		}
		if len(list) != 1 || list[0].TitleID != "tt2" {
			t.Errorf("after remove = %+v", list)
		}

		list, err = s.RemoveEntry(ctx, acc.ID, "absent")
		if err != nil {
			t.Fatalf("RemoveEntry(absent) error = %v", err)
		}
		if len(list) != 1 {
			t.Errorf("remove of absent title changed list: %+v", list)
		}

		if _, err := s.RemoveEntry(ctx, "65a000000000000000000000", "tt2"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("remove on missing account error = %v, want ErrNotFound", err)
		}
	})

	t.Run("concurrent adds of the same title", func(t *testing.T) {
		s := newStore(t)
		acc, _ := s.CreateAccount(ctx, &models.Account{Username: "alice", Email: "a@x.io"})

		const workers = 16
		var wg sync.WaitGroup
		var mu sync.Mutex
		succeeded := 0
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.AddEntry(ctx, acc.ID, models.WatchlistEntry{TitleID: "tt-race"}); err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if succeeded != 1 {
			t.Errorf("successful adds = %d, want 1", succeeded)
		}
		got, _ := s.FindByID(ctx, acc.ID)
		if len(got.Watchlist) != 1 {
			t.Errorf("watchlist length = %d, want 1", len(got.Watchlist))
		}
	})

	t.Run("concurrent adds of different titles are not lost", func(t *testing.T) {
		s := newStore(t)
		acc, _ := s.CreateAccount(ctx, &models.Account{Username: "alice", Email: "a@x.io"})

		const workers = 16
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _ = s.AddEntry(ctx, acc.ID, models.WatchlistEntry{TitleID: fmt.Sprintf("tt%d", i)})
			}(i)
		}
		wg.Wait()

		got, _ := s.FindByID(ctx, acc.ID)
		if len(got.Watchlist) != workers {
			t.Errorf("watchlist length = %d, want %d", len(got.Watchlist), workers)
		}
	})
}
