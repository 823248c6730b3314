// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

// Package validation validates decoded request bodies with
// go-playground/validator before any domain logic runs.
//
// Request types declare their rules with struct tags:
//
//	type RegisterRequest struct {
//	    Username string `json:"username" validate:"omitempty,min=3,max=20"`
//	    Email    string `json:"email" validate:"required,email"`
//	    Password string `json:"password" validate:"required,min=6"`
//	}
//
// ValidateStruct returns an *apperr.ValidationError carrying one entry per
// failing field, named after its json tag. The HTTP layer renders it as
//
//	{"message": "password must be at least 6 characters",
//	 "errors": [{"field": "password", "message": "password must be at least 6 characters"}]}
//
// The non-standard notblank validator is registered for fields that must
// contain more than whitespace.
package validation
