// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package auth

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/marquee/internal/config"
)

// Lockout throttles failed logins per email. Each email gets a token
// bucket holding MaxAttempts failures that refills over Window; when a
// failure empties the bucket the email is locked for Duration. A
// successful login forgets the email.
type Lockout struct {
	maxAttempts int
	window      time.Duration
	duration    time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*lockoutEntry
}

type lockoutEntry struct {
	failures    *rate.Limiter
	lockedUntil time.Time
	lastSeen    time.Time
}

// NewLockout creates a Lockout. A non-positive maxAttempts disables it.
func NewLockout(maxAttempts int, window, duration time.Duration) *Lockout {
	return &Lockout{
		maxAttempts: maxAttempts,
		window:      window,
		duration:    duration,
		now:         time.Now,
		entries:     make(map[string]*lockoutEntry),
	}
}

// NewLockoutFromConfig reads lockout settings from the security config.
func NewLockoutFromConfig(cfg *config.SecurityConfig) *Lockout {
	return NewLockout(cfg.LockoutMaxAttempts, cfg.LockoutWindow, cfg.LockoutDuration)
}

func (l *Lockout) enabled() bool {
	return l != nil && l.maxAttempts > 0 && l.window > 0
}

func lockoutKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Locked reports whether email is locked and for how much longer.
func (l *Lockout) Locked(email string) (bool, time.Duration) {
	if !l.enabled() {
		return false, 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[lockoutKey(email)]
	if !ok {
		return false, 0
	}
	now := l.now()
	if now.Before(e.lockedUntil) {
		return true, e.lockedUntil.Sub(now)
	}
	return false, 0
}

// RecordFailure counts a failed login and reports whether the email is
// now locked.
func (l *Lockout) RecordFailure(email string) bool {
	if !l.enabled() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := lockoutKey(email)
	e, ok := l.entries[key]
	if !ok {
		e = &lockoutEntry{failures: l.newBucket()}
		l.entries[key] = e
	}
	e.lastSeen = now

	if now.Before(e.lockedUntil) {
		return true
	}

	e.failures.AllowN(now, 1)
	if e.failures.TokensAt(now) < 1 {
		e.lockedUntil = now.Add(l.duration)
		e.failures = l.newBucket()
		return true
	}

	l.sweep(now)
	return false
}

// RecordSuccess clears any failure history for email.
func (l *Lockout) RecordSuccess(email string) {
	if !l.enabled() {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, lockoutKey(email))
}

func (l *Lockout) newBucket() *rate.Limiter {
	every := l.window / time.Duration(l.maxAttempts)
	return rate.NewLimiter(rate.Every(every), l.maxAttempts)
}

// sweep drops entries idle for longer than the window that are not locked.
// Called with l.mu held.
func (l *Lockout) sweep(now time.Time) {
	for k, e := range l.entries {
		if now.Before(e.lockedUntil) {
			continue
		}
		if now.Sub(e.lastSeen) > l.window+l.duration {
			delete(l.entries, k)
		}
	}
}
