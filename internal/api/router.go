// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/marquee/internal/auth"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/middleware"
)

// Router wires handlers, the auth gateway and middleware into chi.
type Router struct {
	handler       *Handler
	gateway       *auth.Gateway
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil middleware config uses the defaults.
func NewRouter(handler *Handler, gateway *auth.Gateway, mwConfig *ChiMiddlewareConfig) *Router {
	return &Router{
		handler:       handler,
		gateway:       gateway,
		chiMiddleware: NewChiMiddleware(mwConfig),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog)
	r.Use(middleware.PrometheusMetrics)
	r.Use(recoverer)
	r.Use(middleware.SecurityHeaders)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, MsgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})

	r.Get("/", router.handler.Root)
	r.Get("/api", router.handler.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Account and watchlist routes are served under both prefixes.
	for _, prefix := range []string{"/auth", "/api/auth"} {
		r.Route(prefix, router.authRoutes)
	}
	for _, prefix := range []string{"/catalog", "/api/catalog"} {
		r.Route(prefix, router.catalogRoutes)
	}

	return r
}

func (router *Router) authRoutes(r chi.Router) {
	h := router.handler

	r.Use(router.chiMiddleware.RateLimit())
	r.Use(Readiness(h.state))

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.gateway.Authenticate)
		r.Get("/user", h.User)
		r.Post("/logout", h.Logout)
		r.Get("/myList", h.MyList)
		r.Post("/myList/add", h.AddToList)
		r.Post("/myList/remove", h.RemoveFromList)
	})

	r.With(tokenFromQuery, router.gateway.Authenticate).Get("/myList/live", h.LiveUpdates)
}

func (router *Router) catalogRoutes(r chi.Router) {
	r.Use(router.chiMiddleware.RateLimit())
	r.Get("/search", router.handler.CatalogSearch)
	r.Get("/title/{titleId}", router.handler.CatalogTitle)
}

// tokenFromQuery copies ?token= into the token header. Browsers cannot set
// headers on a websocket handshake.
func tokenFromQuery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.ExtractToken(r) == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				r.Header.Set(auth.TokenHeader, token)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// recoverer turns a handler panic into a 500 with the standard envelope.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler panic recovered")
			writeMessage(w, http.StatusInternalServerError, MsgServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
