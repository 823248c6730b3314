// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package models

import "time"

// WatchlistEntry is a title saved by a user. The descriptive fields are
// copied at add time and never refreshed from the catalog.
type WatchlistEntry struct {
	TitleID   string `json:"titleId"`
	Title     string `json:"title"`
	Year      string `json:"year"`
	Kind      string `json:"kind"`
	PosterURL string `json:"posterUrl"`
}

// Account is a registered user.
type Account struct {
	ID         string           `json:"id"`
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	SecretHash string           `json:"-"`
	Watchlist  []WatchlistEntry `json:"watchlist"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// PublicAccount is the projection returned by register and login.
type PublicAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AccountWithList is the projection returned by GET /auth/user.
type AccountWithList struct {
	ID        string           `json:"id"`
	Username  string           `json:"username"`
	Email     string           `json:"email"`
	Watchlist []WatchlistEntry `json:"watchlist"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Public returns the id/username/email projection.
func (a *Account) Public() PublicAccount {
	return PublicAccount{ID: a.ID, Username: a.Username, Email: a.Email}
}

// WithList returns the projection that includes the watchlist.
func (a *Account) WithList() AccountWithList {
	return AccountWithList{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Watchlist: NonNilWatchlist(a.Watchlist),
		CreatedAt: a.CreatedAt,
	}
}

// ContainsTitle reports whether the watchlist already has titleID.
func (a *Account) ContainsTitle(titleID string) bool {
	for i := range a.Watchlist {
		if a.Watchlist[i].TitleID == titleID {
			return true
		}
	}
	return false
}

// NonNilWatchlist returns list, or an empty slice when list is nil.
func NonNilWatchlist(list []WatchlistEntry) []WatchlistEntry {
	if list == nil {
		return []WatchlistEntry{}
	}
	return list
}

// Identity is the verified subject of a bearer token. It is not re-checked
// against the store; callers that need fresh data must fetch the account.
type Identity struct {
	AccountID string
	Username  string
	Email     string
	// TokenID is the token's jti, used by the revocation list.
	TokenID   string
	ExpiresAt time.Time
}
