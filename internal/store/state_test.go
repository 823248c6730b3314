// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/marquee/internal/metrics"
)

func TestState_Transitions(t *testing.T) {
	s := NewState(true)
	if !s.Available() {
		t.Fatal("NewState(true) not available")
	}

	boom := errors.New("boom")
	if !s.MarkUnavailable(boom) {
		t.Error("first MarkUnavailable should report a change")
	}
	if s.MarkUnavailable(boom) {
		t.Error("second MarkUnavailable should not report a change")
	}
	if s.Available() {
		t.Error("Available() = true after MarkUnavailable")
	}
	if !errors.Is(s.LastError(), boom) {
		t.Errorf("LastError() = %v, want %v", s.LastError(), boom)
	}
	if got := testutil.ToFloat64(metrics.StoreAvailable); got != 0 {
		t.Errorf("availability gauge = %v, want 0", got)
	}

	if !s.MarkAvailable() {
		t.Error("MarkAvailable should report a change")
	}
	if s.LastError() != nil {
		t.Errorf("LastError() = %v after recovery", s.LastError())
	}
	if got := testutil.ToFloat64(metrics.StoreAvailable); got != 1 {
		t.Errorf("availability gauge = %v, want 1", got)
	}
}

func TestState_NilIsAvailable(t *testing.T) {
	var s *State
	if !s.Available() {
		t.Error("nil State should report available")
	}
}

func TestStateContext(t *testing.T) {
	if got := StateFromContext(context.Background()); got != nil {
		t.Errorf("StateFromContext(empty) = %v, want nil", got)
	}

	s := NewState(false)
	ctx := ContextWithState(context.Background(), s)
	if got := StateFromContext(ctx); got != s {
		t.Error("StateFromContext did not return the attached state")
	}
}
