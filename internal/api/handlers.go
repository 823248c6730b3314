// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	gws "github.com/gorilla/websocket"

	"github.com/tomtom215/marquee/internal/account"
	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/catalog"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/models"
	"github.com/tomtom215/marquee/internal/store"
	"github.com/tomtom215/marquee/internal/watchlist"
	"github.com/tomtom215/marquee/internal/websocket"
)

// CatalogProvider is satisfied by *catalog.Client.
type CatalogProvider interface {
	Search(ctx context.Context, query string, page int) (*catalog.SearchResult, error)
	Detail(ctx context.Context, titleID string) (*catalog.TitleDetail, error)
}

// Dependencies groups everything the handlers need. Catalog and Hub may be
// nil; the matching routes then answer 503 and 404 respectively.
type Dependencies struct {
	Accounts  *account.Service
	Watchlist *watchlist.Service
	Catalog   CatalogProvider
	Hub       *websocket.Hub
	State     *store.State
	// Pinger backs the readiness probe. When nil only State is consulted.
	Pinger interface {
		Ping(ctx context.Context) error
	}
	CORSOrigins []string
}

// Handler holds the HTTP handlers.
type Handler struct {
	accounts    *account.Service
	watchlist   *watchlist.Service
	catalog     CatalogProvider
	hub         *websocket.Hub
	state       *store.State
	pinger      interface{ Ping(ctx context.Context) error }
	corsOrigins []string
	startTime   time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		accounts:    deps.Accounts,
		watchlist:   deps.Watchlist,
		catalog:     deps.Catalog,
		hub:         deps.Hub,
		state:       deps.State,
		pinger:      deps.Pinger,
		corsOrigins: deps.CORSOrigins,
		startTime:   time.Now(),
	}
}

// NewGateway builds the auth gateway with this package's error responses.
func NewGateway(verifier auth.Verifier, revocation auth.RevocationList) *auth.Gateway {
	return auth.NewGateway(verifier, revocation, writeError)
}

// identity returns the caller set by the gateway, or writes 401.
func identity(w http.ResponseWriter, r *http.Request) (*models.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, MsgNoToken)
		return nil, false
	}
	return id, true
}

func (h *Handler) upgrader() gws.Upgrader {
	return gws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts requests whose Origin is in the CORS list.
// A missing Origin is accepted: the route already requires a token and only
// non-browser clients omit the header.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.corsOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
