// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/models"
)

// MemoryStore is an in-process AccountStore used for tests and for the
// "memory" driver. A single mutex makes every operation atomic.
type MemoryStore struct {
	mu         sync.Mutex
	byID       map[string]*models.Account
	byEmail    map[string]string
	byUsername map[string]string
	down       error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]*models.Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}
}

// SetUnavailable makes every subsequent operation fail with
// ErrStoreUnavailable until called again with false.
func (m *MemoryStore) SetUnavailable(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if down {
		m.down = fmt.Errorf("%w: memory store marked down", apperr.ErrStoreUnavailable)
	} else {
		m.down = nil
	}
}

func (m *MemoryStore) CreateAccount(ctx context.Context, account *models.Account) (_ *models.Account, err error) {
	start := time.Now()
	defer func() { observe(opCreate, start, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, m.down
	}

	if _, ok := m.byEmail[account.Email]; ok {
		return nil, apperr.ErrDuplicateEmail
	}
	if _, ok := m.byUsername[account.Username]; ok {
		return nil, apperr.ErrDuplicateUsername
	}

	stored := &models.Account{
		ID:         primitive.NewObjectID().Hex(),
		Username:   account.Username,
		Email:      account.Email,
		SecretHash: account.SecretHash,
		Watchlist:  []models.WatchlistEntry{},
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	m.byID[stored.ID] = stored
	m.byEmail[stored.Email] = stored.ID
	m.byUsername[stored.Username] = stored.ID

	return copyAccount(stored), nil
}

func (m *MemoryStore) FindByID(ctx context.Context, id string) (_ *models.Account, err error) {
	start := time.Now()
	defer func() { observe(opFindByID, start, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(id)
}

func (m *MemoryStore) FindByEmail(ctx context.Context, email string) (_ *models.Account, err error) {
	start := time.Now()
	defer func() { observe(opFindByEmail, start, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, m.down
	}
	id, ok := m.byEmail[email]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return m.lookup(id)
}

func (m *MemoryStore) FindByUsername(ctx context.Context, username string) (_ *models.Account, err error) {
	start := time.Now()
	defer func() { observe(opFindByUsername, start, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, m.down
	}
	id, ok := m.byUsername[username]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return m.lookup(id)
}

// lookup must be called with m.mu held.
func (m *MemoryStore) lookup(id string) (*models.Account, error) {
	if m.down != nil {
		return nil, m.down
	}
	acc, ok := m.byID[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return copyAccount(acc), nil
}

func (m *MemoryStore) AddEntry(ctx context.Context, accountID string, entry models.WatchlistEntry) (_ []models.WatchlistEntry, err error) {
	start := time.Now()
	defer func() { observe(opAddEntry, start, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, m.down
	}

	acc, ok := m.byID[accountID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if acc.ContainsTitle(entry.TitleID) {
		return nil, apperr.ErrAlreadyInList
	}
	acc.Watchlist = append(acc.Watchlist, entry)
	return cloneEntries(acc.Watchlist), nil
}

func (m *MemoryStore) RemoveEntry(ctx context.Context, accountID, titleID string) (_ []models.WatchlistEntry, err error) {
	start := time.Now()
	defer func() { observe(opRemoveEntry, start, err) }()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.down != nil {
		return nil, m.down
	}

	acc, ok := m.byID[accountID]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	kept := acc.Watchlist[:0]
	for _, e := range acc.Watchlist {
		if e.TitleID != titleID {
			kept = append(kept, e)
		}
	}
	acc.Watchlist = kept
	return cloneEntries(acc.Watchlist), nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.down
}

// Reconnect clears nothing; the memory store has no connection to rebuild.
func (m *MemoryStore) Reconnect(ctx context.Context) error {
	return m.Ping(ctx)
}

func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

func copyAccount(a *models.Account) *models.Account {
	c := *a
	c.Watchlist = cloneEntries(a.Watchlist)
	return &c
}
