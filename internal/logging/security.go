// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package logging

import (
	"context"
	"strings"
)

// AuthEvent describes an authentication outcome for the audit log.
type AuthEvent struct {
	// Event is one of register, login, logout, token_rejected.
	Event     string
	AccountID string
	Email     string
	IPAddress string
	Success   bool
	// Reason is a short machine-friendly cause for failures.
	Reason string
}

// LogAuthEvent writes an auth audit line. Email addresses are masked.
func LogAuthEvent(ctx context.Context, ev AuthEvent) {
	l := Ctx(ctx).With().Str("component", "auth").Logger()
	e := l.Info()
	if !ev.Success {
		e = l.Warn()
	}
	e = e.Str("event", ev.Event).Bool("success", ev.Success)
	if ev.AccountID != "" {
		e = e.Str("target_account", ev.AccountID)
	}
	if ev.Email != "" {
		e = e.Str("email", MaskEmail(ev.Email))
	}
	if ev.IPAddress != "" {
		e = e.Str("ip", ev.IPAddress)
	}
	if ev.Reason != "" {
		e = e.Str("reason", ev.Reason)
	}
	e.Msg("auth event")
}

// MaskEmail keeps the first character of the local part and the domain.
//
//	MaskEmail("alice@example.com") == "a***@example.com"
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
