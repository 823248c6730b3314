// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"

	"github.com/tomtom215/marquee/internal/account"
)

// Register creates an account and returns a session.
//
// @Summary Register a new account
// @Description Creates an account and returns a bearer token. Username falls back to name, then to the local part of the email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} account.Session
// @Failure 400 {object} ErrorResponse "Validation failure or duplicate email/username"
// @Failure 503 {object} ErrorResponse "Store unavailable"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.accounts.Register(r.Context(), account.RegisterInput{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// Login exchanges credentials for a session.
//
// @Summary Log in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} account.Session
// @Failure 400 {object} ErrorResponse "Invalid credentials or missing fields"
// @Failure 429 {object} ErrorResponse "Too many failed login attempts"
// @Failure 503 {object} ErrorResponse "Store unavailable"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// User returns the caller's account including the watchlist.
//
// @Summary Get current account
// @Tags Auth
// @Produce json
// @Security TokenAuth
// @Success 200 {object} models.AccountWithList
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /auth/user [get]
func (h *Handler) User(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	view, err := h.accounts.CurrentAccount(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Logout revokes the presented token when revocation is enabled.
//
// @Summary Log out
// @Description Revokes the current token until it expires. Without revocation configured the call succeeds and has no effect.
// @Tags Auth
// @Produce json
// @Security TokenAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if err := h.accounts.Logout(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: MsgLoggedOut})
}
