// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/logging"
)

// Client-facing messages.
const (
	MsgNoToken            = "No token, authorization denied"
	MsgInvalidToken       = "Token is not valid"
	MsgTokenRevoked       = "Token has been revoked"
	MsgDuplicateEmail     = "User already exists with this email"
	MsgDuplicateUsername  = "Username already taken"
	MsgInvalidCredentials = "Invalid credentials"
	MsgUserNotFound       = "User not found"
	MsgAlreadyInList      = "Movie already in your list"
	MsgLockedOut          = "Too many failed login attempts"
	MsgServiceUnavailable = "Service unavailable"
	MsgServerError        = "Server error"
	MsgMethodNotAllowed   = "Method not allowed"
	MsgRouteNotFound      = "Route not found"
	MsgTooManyRequests    = "Too many requests"
	MsgCatalogDisabled    = "Catalog not configured"
	MsgInvalidBody        = "Invalid request body"

	MsgMovieAdded   = "Movie added to list"
	MsgMovieRemoved = "Movie removed from list"
	MsgLoggedOut    = "Logged out"
	MsgRunning      = "Marquee API Running"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Message string              `json:"message" example:"Invalid credentials"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
}

// MessageResponse carries a single human-readable message.
type MessageResponse struct {
	Message string `json:"message" example:"Marquee API Running"`
}

// writeJSON sends data with the given status.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"` + MsgServerError + `"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		logging.Debug().Err(err).Msg("Failed to write JSON response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Message: message})
}

// classify maps an error to its status code and client message. Unknown
// errors become 500 with a generic message.
func classify(err error) (int, ErrorResponse) {
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, ErrorResponse{Message: verr.Message, Errors: verr.Fields}
	}

	var upErr *apperr.UpstreamError
	if errors.As(err, &upErr) {
		return http.StatusBadGateway, ErrorResponse{Message: upErr.Message}
	}

	switch {
	case errors.Is(err, apperr.ErrDuplicateEmail):
		return http.StatusBadRequest, ErrorResponse{Message: MsgDuplicateEmail}
	case errors.Is(err, apperr.ErrDuplicateUsername):
		return http.StatusBadRequest, ErrorResponse{Message: MsgDuplicateUsername}
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return http.StatusBadRequest, ErrorResponse{Message: MsgInvalidCredentials}
	case errors.Is(err, apperr.ErrAlreadyInList):
		return http.StatusBadRequest, ErrorResponse{Message: MsgAlreadyInList}
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Message: err.Error()}
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Message: MsgNoToken}
	case errors.Is(err, apperr.ErrTokenRevoked):
		return http.StatusUnauthorized, ErrorResponse{Message: MsgTokenRevoked}
	case errors.Is(err, apperr.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Message: MsgInvalidToken}
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Message: MsgUserNotFound}
	case errors.Is(err, apperr.ErrLockedOut):
		return http.StatusTooManyRequests, ErrorResponse{Message: MsgLockedOut}
	case errors.Is(err, apperr.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, ErrorResponse{Message: MsgServiceUnavailable}
	case errors.Is(err, catalog.ErrNotConfigured):
		return http.StatusServiceUnavailable, ErrorResponse{Message: MsgCatalogDisabled}
	default:
		return http.StatusInternalServerError, ErrorResponse{Message: MsgServerError}
	}
}

// writeError maps err to a response. Server-side failures are logged with
// detail; clients only see the generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	log := logging.Ctx(r.Context())
	switch {
	case status >= http.StatusInternalServerError:
		log.Error().Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")
	case status == http.StatusUnauthorized || status == http.StatusTooManyRequests:
		log.Debug().Err(err).Int("status", status).Msg("request rejected")
	}

	writeJSON(w, status, body)
}
