// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/websocket"
)

// WatchlistResponse is returned by add and remove.
type WatchlistResponse struct {
	Message string                  `json:"message" example:"Movie added to list"`
	MyList  []models.WatchlistEntry `json:"myList"`
}

// ListResponse is returned by GET /auth/myList.
type ListResponse struct {
	MyList []models.WatchlistEntry `json:"myList"`
}

// AddToList saves a title to the caller's watchlist.
//
// @Summary Add a title to the watchlist
// @Tags Watchlist
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body AddEntryRequest true "Title to add"
// @Success 200 {object} WatchlistResponse
// @Failure 400 {object} ErrorResponse "Movie already in your list"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/myList/add [post]
func (h *Handler) AddToList(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req AddEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	list, err := h.watchlist.Add(r.Context(), id, req.entry())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WatchlistResponse{Message: MsgMovieAdded, MyList: list})
}

// RemoveFromList deletes a title from the caller's watchlist. Removing a
// title that is not present succeeds.
//
// @Summary Remove a title from the watchlist
// @Tags Watchlist
// @Accept json
// @Produce json
// @Security TokenAuth
// @Param request body RemoveEntryRequest true "Title to remove"
// @Success 200 {object} WatchlistResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/myList/remove [post]
func (h *Handler) RemoveFromList(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req RemoveEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	req.normalize()
	if err := validateRequest(&req); err != nil {
		writeError(w, r, err)
		return
	}

	list, err := h.watchlist.Remove(r.Context(), id, req.TitleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, WatchlistResponse{Message: MsgMovieRemoved, MyList: list})
}

// MyList returns the caller's watchlist.
//
// @Summary Get the watchlist
// @Tags Watchlist
// @Produce json
// @Security TokenAuth
// @Success 200 {object} ListResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/myList [get]
func (h *Handler) MyList(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	list, err := h.watchlist.List(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ListResponse{MyList: list})
}

// LiveUpdates upgrades to a websocket that receives the caller's watchlist
// changes.
//
// @Summary Stream watchlist changes
// @Description Upgrades to a websocket. Each change to the caller's watchlist is pushed as {type:"watchlist", data:{action, titleId, myList}}.
// @Tags Watchlist
// @Security TokenAuth
// @Success 101 "Switching protocols"
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Live updates disabled"
// @Router /auth/myList/live [get]
func (h *Handler) LiveUpdates(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if h.hub == nil || !h.hub.Running() {
		writeMessage(w, http.StatusNotFound, MsgRouteNotFound)
		return
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, id.AccountID)
	if err := h.hub.Attach(r.Context(), client); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("websocket hub unavailable")
		_ = conn.Close()
		return
	}
	client.Start()
}
