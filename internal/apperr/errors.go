// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package apperr defines the domain error taxonomy shared by the services
// and the HTTP layer. Services return (possibly wrapped) sentinels; the API
// maps them to a status code and message in exactly one place.
package apperr

import (
	"errors"
	"strings"
)

var (
	// ErrValidation marks malformed, user-fixable input.
	ErrValidation = errors.New("validation failed")

	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthorized means no bearer token was presented.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidToken means the token failed signature, format or expiry checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked means the token was valid but has been revoked.
	ErrTokenRevoked = errors.New("token revoked")

	// ErrNotFound means the referenced account does not exist.
	ErrNotFound = errors.New("account not found")

	ErrAlreadyInList = errors.New("title already in watchlist")

	// ErrLockedOut means too many failed logins for an email.
	ErrLockedOut = errors.New("too many failed login attempts")

	// ErrStoreUnavailable is a transient infrastructure failure.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUpstream is a failure of the external movie-data provider.
	ErrUpstream = errors.New("upstream provider error")
)

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries field-level detail and matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

// NewValidationError builds a ValidationError. When message is empty it is
// derived from the field messages.
func NewValidationError(message string, fields ...FieldError) *ValidationError {
	if message == "" {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			parts = append(parts, f.Message)
		}
		message = strings.Join(parts, "; ")
	}
	if message == "" {
		message = ErrValidation.Error()
	}
	return &ValidationError{Message: message, Fields: fields}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UpstreamError wraps a provider failure with the provider's own message.
type UpstreamError struct {
	Provider string
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return e.Provider + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Provider + ": " + e.Message
}

// Unwrap exposes the cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is reports ErrUpstream as a match.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}
