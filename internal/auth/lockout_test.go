// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"testing"
	"time"
)

func newTestLockout(now *time.Time) *Lockout {
	l := NewLockout(5, 15*time.Minute, 15*time.Minute)
	l.now = func() time.Time { return *now }
	return l
}

func TestLockout_LocksAfterMaxAttempts(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLockout(&now)

	for i := 1; i <= 4; i++ {
		if l.RecordFailure("a@x.io") {
			t.Fatalf("locked after %d failures", i)
		}
	}
	if locked, _ := l.Locked("a@x.io"); locked {
		t.Fatal("locked before the fifth failure")
	}

	if !l.RecordFailure("A@X.io ") {
		t.Fatal("fifth failure did not lock (key should be case-insensitive)")
	}

	locked, remaining := l.Locked("a@x.io")
	if !locked || remaining != 15*time.Minute {
		t.Errorf("Locked() = %v, %v", locked, remaining)
	}

	now = now.Add(15*time.Minute + time.Second)
	if locked, _ := l.Locked("a@x.io"); locked {
		t.Error("still locked after the lockout duration")
	}
}

func TestLockout_FailuresSpreadOverWindowDoNotLock(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLockout(&now)

	for i := 0; i < 10; i++ {
		if l.RecordFailure("a@x.io") {
			t.Fatalf("locked on failure %d despite spacing", i+1)
		}
		now = now.Add(4 * time.Minute)
	}
}

func TestLockout_SuccessResets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLockout(&now)

	for i := 0; i < 4; i++ {
		l.RecordFailure("a@x.io")
	}
	l.RecordSuccess("a@x.io")

	for i := 0; i < 4; i++ {
		if l.RecordFailure("a@x.io") {
			t.Fatalf("locked on failure %d after reset", i+1)
		}
	}
}

func TestLockout_IndependentEmails(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newTestLockout(&now)

	for i := 0; i < 5; i++ {
		l.RecordFailure("a@x.io")
	}
	if locked, _ := l.Locked("b@x.io"); locked {
		t.Error("unrelated email locked")
	}
}

func TestLockout_Disabled(t *testing.T) {
	l := NewLockout(0, time.Minute, time.Minute)
	for i := 0; i < 20; i++ {
		if l.RecordFailure("a@x.io") {
			t.Fatal("disabled lockout locked")
		}
	}

	var nilLockout *Lockout
	if locked, _ := nilLockout.Locked("a@x.io"); locked {
		t.Error("nil lockout reported locked")
	}
}
