// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/marquee/internal/apperr"
	"github.com/tomtom215/marquee/internal/catalog"
)

// CatalogSearch proxies a title search to the movie-data provider.
//
// @Summary Search the catalog
// @Tags Catalog
// @Produce json
// @Param q query string true "Search text" example(matrix)
// @Param page query int false "Result page (1-100)" default(1) minimum(1) maximum(100)
// @Success 200 {object} catalog.SearchResult
// @Failure 400 {object} ErrorResponse "Missing query or bad page"
// @Failure 502 {object} ErrorResponse "Provider error"
// @Failure 503 {object} ErrorResponse "Catalog not configured"
// @Router /catalog/search [get]
func (h *Handler) CatalogSearch(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, r, catalog.ErrNotConfigured)
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, apperr.NewValidationError("", apperr.FieldError{Field: "page", Message: "page must be a number"}))
			return
		}
		page = n
	}

	result, err := h.catalog.Search(r.Context(), r.URL.Query().Get("q"), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CatalogTitle returns the provider's full record for one title.
//
// @Summary Get title detail
// @Tags Catalog
// @Produce json
// @Param titleId path string true "Provider title id" example(tt0133093)
// @Success 200 {object} catalog.TitleDetail
// @Failure 502 {object} ErrorResponse "Provider error"
// @Failure 503 {object} ErrorResponse "Catalog not configured"
// @Router /catalog/title/{titleId} [get]
func (h *Handler) CatalogTitle(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		writeError(w, r, catalog.ErrNotConfigured)
		return
	}

	detail, err := h.catalog.Detail(r.Context(), chi.URLParam(r, "titleId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
