// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// ErrRevocationClosed is returned after Close.
var ErrRevocationClosed = errors.New("revocation list is closed")

// RevocationList records token IDs that must be rejected before their
// natural expiry. Entries only need to live until the token expires.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Close() error
}

// NewRevocationList builds the configured backend, or returns nil when
// revocation is disabled. A nil list means tokens are purely stateless.
func NewRevocationList(cfg *config.SecurityConfig) (RevocationList, error) {
	if !cfg.RevocationEnabled {
		return nil, nil
	}

	switch cfg.RevocationStore {
	case "", "memory":
		logging.Info().Msg("Using in-memory token revocation list")
		return NewMemoryRevocationList(), nil

	case "badger":
		if err := os.MkdirAll(cfg.RevocationPath, 0o750); err != nil {
			return nil, fmt.Errorf("create revocation directory: %w", err)
		}
		opts := badger.DefaultOptions(cfg.RevocationPath).WithLogger(nil)
		db, err := badger.Open(opts)
		if err != nil {
			return nil, fmt.Errorf("open revocation store: %w", err)
		}
		logging.Info().Str("path", cfg.RevocationPath).Msg("Using BadgerDB token revocation list")
		return NewBadgerRevocationList(db, "", true), nil

	default:
		return nil, fmt.Errorf("unknown revocation store %q", cfg.RevocationStore)
	}
}

// MemoryRevocationList keeps revoked token IDs in a map. Expired entries
// are swept on every Revoke.
type MemoryRevocationList struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	closed  bool
	now     func() time.Time
}

// NewMemoryRevocationList returns an empty in-memory list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *MemoryRevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrRevocationClosed
	}

	now := l.now()
	for id, exp := range l.entries {
		if !now.Before(exp) {
			delete(l.entries, id)
		}
	}
	if now.Before(expiresAt) {
		l.entries[tokenID] = expiresAt
		metrics.TokenRevocations.WithLabelValues("memory").Inc()
	}
	metrics.RevokedTokens.Set(float64(len(l.entries)))
	return nil
}

func (l *MemoryRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false, ErrRevocationClosed
	}
	exp, ok := l.entries[tokenID]
	return ok && l.now().Before(exp), nil
}

// Len returns the number of tracked entries, including any not yet swept.
func (l *MemoryRevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

func (l *MemoryRevocationList) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	l.entries = nil
	return nil
}

// revocationRecord is the value stored per revoked token.
type revocationRecord struct {
	RevokedAt time.Time `json:"revoked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BadgerRevocationList persists revoked token IDs in BadgerDB. Each key
// carries a TTL equal to the token's remaining lifetime, so Badger drops
// entries on its own once they no longer matter.
type BadgerRevocationList struct {
	db     *badger.DB
	prefix []byte
	ownsDB bool

	mu     sync.RWMutex
	closed bool
}

// NewBadgerRevocationList wraps db. When ownsDB is true Close also closes
// the database.
func NewBadgerRevocationList(db *badger.DB, prefix string, ownsDB bool) *BadgerRevocationList {
	if prefix == "" {
		prefix = "revoked:"
	}
	return &BadgerRevocationList{
		db:     db,
		prefix: []byte(prefix),
		ownsDB: ownsDB,
	}
}

func (l *BadgerRevocationList) key(tokenID string) []byte {
	k := make([]byte, 0, len(l.prefix)+len(tokenID))
	k = append(k, l.prefix...)
	return append(k, tokenID...)
}

func (l *BadgerRevocationList) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrRevocationClosed
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(revocationRecord{RevokedAt: time.Now().UTC(), ExpiresAt: expiresAt.UTC()})
	if err != nil {
		return fmt.Errorf("encode revocation: %w", err)
	}

	err = l.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(l.key(tokenID), data).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}

	metrics.TokenRevocations.WithLabelValues("badger").Inc()
	return nil
}

func (l *BadgerRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false, ErrRevocationClosed
	}

	var revoked bool
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(l.key(tokenID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var rec revocationRecord
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			revoked = time.Now().Before(rec.ExpiresAt)
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return revoked, nil
}

func (l *BadgerRevocationList) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.ownsDB {
		return l.db.Close()
	}
	return nil
}
