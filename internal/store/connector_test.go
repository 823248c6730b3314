// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/marquee/internal/apperr"
)

// flakyStore fails pings until healthy is set, and counts reconnects.
type flakyStore struct {
	healthy    atomic.Bool
	reconnects atomic.Int32
}

func (f *flakyStore) Ping(ctx context.Context) error {
	if f.healthy.Load() {
		return nil
	}
	return apperr.ErrStoreUnavailable
}

func (f *flakyStore) Reconnect(ctx context.Context) error {
	f.reconnects.Add(1)
	return f.Ping(ctx)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestConnector_MarksUnavailableAndRecovers(t *testing.T) {
	fs := &flakyStore{}
	state := NewState(true)
	c := NewConnector(fs, state, 10*time.Millisecond, 10*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx) }()

	waitFor(t, func() bool { return !state.Available() })
	waitFor(t, func() bool { return fs.reconnects.Load() >= 2 })

	fs.healthy.Store(true)
	waitFor(t, state.Available)

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestConnector_HealthyStoreStaysAvailable(t *testing.T) {
	fs := &flakyStore{}
	fs.healthy.Store(true)
	state := NewState(false)
	c := NewConnector(fs, state, 10*time.Millisecond, 10*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Serve(ctx) }()

	waitFor(t, state.Available)
	time.Sleep(50 * time.Millisecond)

	if n := fs.reconnects.Load(); n != 0 {
		t.Errorf("reconnects = %d, want 0", n)
	}
}

// preparingStore reports healthy pings but only finishes setup once ready
// is set.
type preparingStore struct {
	flakyStore
	ready    atomic.Bool
	prepares atomic.Int32
}

func (p *preparingStore) Prepare(ctx context.Context) error {
	p.prepares.Add(1)
	if !p.ready.Load() {
		return apperr.ErrStoreUnavailable
	}
	return nil
}

func TestConnector_PreparesBeforeMarkingAvailable(t *testing.T) {
	ps := &preparingStore{}
	ps.healthy.Store(true)
	state := NewState(false)
	c := NewConnector(ps, state, 10*time.Millisecond, 10*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Serve(ctx) }()

	waitFor(t, func() bool { return ps.prepares.Load() >= 2 })
	if state.Available() {
		t.Fatal("store marked available before setup succeeded")
	}

	ps.ready.Store(true)
	waitFor(t, state.Available)
}

func TestConnector_FailedSetupMarksUnavailable(t *testing.T) {
	ps := &preparingStore{}
	ps.healthy.Store(true)
	state := NewState(true)
	c := NewConnector(ps, state, 10*time.Millisecond, 10*time.Millisecond, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = c.Serve(ctx) }()

	waitFor(t, func() bool { return !state.Available() })
	if ps.prepares.Load() == 0 {
		t.Error("Prepare was never called")
	}
}

func TestNewConnector_Defaults(t *testing.T) {
	c := NewConnector(&flakyStore{}, NewState(true), 0, 0, 0)
	if c.interval != 10*time.Second || c.reconnectDelay != 5*time.Second || c.pingTimeout != 5*time.Second {
		t.Errorf("defaults = %v/%v/%v", c.interval, c.reconnectDelay, c.pingTimeout)
	}
	if c.String() != "store-connector" {
		t.Errorf("String() = %q", c.String())
	}
}
