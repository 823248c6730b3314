// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package logging provides the process-wide zerolog logger for Marquee.
//
// Initialize once at startup:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
// Log with structured fields, always terminating the chain with Msg or Send:
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Error().Err(err).Msg("store ping failed")
//
// Inside request handlers prefer the context-aware form, which adds the
// request_id and account_id fields set by the HTTP middleware:
//
//	logging.Ctx(r.Context()).Info().Str("title_id", id).Msg("watchlist entry added")
//
// Libraries that only speak log/slog (suture, watermill) are bridged with
// NewSlogLogger so that all output shares one format and level.
//
// # Configuration
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
package logging
