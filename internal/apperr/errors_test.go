// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Is(t *testing.T) {
	err := fmt.Errorf("register: %w", NewValidationError("", FieldError{Field: "email", Message: "email is required"}))

	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(err, ErrValidation) = false, want true")
	}

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("errors.As(err, *ValidationError) = false")
	}
	if ve.Message != "email is required" {
		t.Errorf("Message = %q, want derived field message", ve.Message)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "email" {
		t.Errorf("Fields = %+v", ve.Fields)
	}
}

func TestNewValidationError_Messages(t *testing.T) {
	tests := []struct {
		name    string
		message string
		fields  []FieldError
		want    string
	}{
		{"explicit", "Please enter all fields", nil, "Please enter all fields"},
		{"joined", "", []FieldError{{"a", "a bad"}, {"b", "b bad"}}, "a bad; b bad"},
		{"fallback", "", nil, "validation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewValidationError(tt.message, tt.fields...).Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpstreamError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("search: %w", &UpstreamError{Provider: "omdb", Message: "request failed", Err: cause})

	if !errors.Is(err, ErrUpstream) {
		t.Error("errors.Is(err, ErrUpstream) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Is(err, ErrValidation) {
		t.Error("upstream error matched ErrValidation")
	}
}
