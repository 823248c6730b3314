// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
)

const readinessTimeout = 2 * time.Second

// HealthResponse is returned by the probe endpoints.
type HealthResponse struct {
	Status string `json:"status" example:"ready"`
	Store  string `json:"store,omitempty" example:"up"`
	Uptime string `json:"uptime,omitempty" example:"1h2m3s"`
}

// Root answers the service banner.
//
// @Summary Service banner
// @Tags Health
// @Produce json
// @Success 200 {object} MessageResponse
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{Message: MsgRunning})
}

// HealthLive reports that the process is serving requests.
//
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: time.Since(h.startTime).Truncate(time.Second).String(),
	})
}

// HealthReady reports whether the document store can serve requests.
//
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.storeUp(r.Context()) {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "not_ready", Store: "down"})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ready", Store: "up"})
}

func (h *Handler) storeUp(ctx context.Context) bool {
	if !h.state.Available() {
		return false
	}
	if h.pinger == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	if err := h.pinger.Ping(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("readiness ping failed")
		return false
	}
	return true
}
