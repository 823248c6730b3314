// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/marquee/internal/metrics"
)

// State tracks whether the store is accepting operations. The connector
// owns the writes; request handling only reads it.
type State struct {
	mu        sync.RWMutex
	available bool
	lastErr   error
	changedAt time.Time
}

// NewState returns a State with the given initial availability.
func NewState(available bool) *State {
	s := &State{available: available, changedAt: time.Now()}
	metrics.SetStoreAvailable(available)
	return s
}

// Available reports whether the store is ready. A nil State is treated as
// available so that handlers without a connector keep working.
func (s *State) Available() bool {
	if s == nil {
		return true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.available
}

// MarkAvailable records a successful health check. It returns true when
// this call changed the state.
func (s *State) MarkAvailable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := !s.available
	s.available = true
	s.lastErr = nil
	if changed {
		s.changedAt = time.Now()
	}
	metrics.SetStoreAvailable(true)
	return changed
}

// MarkUnavailable records a failed health check. It returns true when
// this call changed the state.
func (s *State) MarkUnavailable(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.available
	s.available = false
	s.lastErr = err
	if changed {
		s.changedAt = time.Now()
	}
	metrics.SetStoreAvailable(false)
	return changed
}

// LastError returns the error from the most recent failed check, if any.
func (s *State) LastError() error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Since returns when availability last changed.
func (s *State) Since() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.changedAt
}

type stateKey struct{}

// ContextWithState attaches s to ctx.
func ContextWithState(ctx context.Context, s *State) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// StateFromContext returns the State attached to ctx, or nil.
func StateFromContext(ctx context.Context) *State {
	s, _ := ctx.Value(stateKey{}).(*State)
	return s
}
