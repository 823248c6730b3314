// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/validation"
)

const maxBodyBytes = 64 * 1024

// RegisterRequest is the body of POST /auth/register. Name is used as the
// username when Username is empty.
type RegisterRequest struct {
	Username string `json:"username" example:"alice"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"secret1"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"secret1"`
}

// AddEntryRequest is the body of POST /auth/myList/add. The provider's
// field names (imdbID, Type, Poster) are accepted as fallbacks.
type AddEntryRequest struct {
	TitleID   string `json:"titleId" validate:"required,notblank,max=64" example:"tt0133093"`
	Title     string `json:"title" validate:"max=512" example:"The Matrix"`
	Year      string `json:"year" validate:"max=32" example:"1999"`
	Kind      string `json:"kind" validate:"max=32" example:"movie"`
	PosterURL string `json:"posterUrl" validate:"max=2048" example:"https://img.example/matrix.jpg"`

	IMDBID string `json:"imdbID,omitempty" swaggerignore:"true"`
	Type   string `json:"Type,omitempty" swaggerignore:"true"`
	Poster string `json:"Poster,omitempty" swaggerignore:"true"`
}

func (r *AddEntryRequest) normalize() {
	if strings.TrimSpace(r.TitleID) == "" {
		r.TitleID = r.IMDBID
	}
	if r.Kind == "" {
		r.Kind = r.Type
	}
	if r.PosterURL == "" {
		r.PosterURL = r.Poster
	}
	r.TitleID = strings.TrimSpace(r.TitleID)
}

func (r *AddEntryRequest) entry() models.WatchlistEntry {
	return models.WatchlistEntry{
		TitleID:   r.TitleID,
		Title:     r.Title,
		Year:      r.Year,
		Kind:      r.Kind,
		PosterURL: r.PosterURL,
	}
}

// RemoveEntryRequest is the body of POST /auth/myList/remove.
type RemoveEntryRequest struct {
	TitleID string `json:"titleId" validate:"required,notblank,max=64" example:"tt0133093"`
	IMDBID  string `json:"imdbID,omitempty" swaggerignore:"true"`
}

func (r *RemoveEntryRequest) normalize() {
	if strings.TrimSpace(r.TitleID) == "" {
		r.TitleID = r.IMDBID
	}
	r.TitleID = strings.TrimSpace(r.TitleID)
}

// decodeJSON reads a bounded JSON body into dst. An empty body decodes to
// the zero value so field validation reports what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.NewValidationError("Request body too large")
		}
		return apperr.NewValidationError(MsgInvalidBody)
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.NewValidationError(MsgInvalidBody)
	}
	return nil
}

// validateRequest runs struct validation on a decoded body.
func validateRequest(dst interface{}) error {
	return validation.ValidateStruct(dst)
}
