// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_api_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_api_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_api_active_requests",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Store

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_store_operation_errors_total",
			Help: "Document store operation failures by class",
		},
		[]string{"operation", "class"},
	)

	StoreAvailable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_store_available",
			Help: "1 when the document store accepts operations, 0 otherwise",
		},
	)

	StoreReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marquee_store_reconnects_total",
			Help: "Number of store reconnect attempts",
		},
	)

	// Auth and watchlist

	AuthOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_auth_outcomes_total",
			Help: "Authentication operations by action and result",
		},
		[]string{"action", "result"}, // action: register, login, logout, verify
	)

	WatchlistMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_watchlist_mutations_total",
			Help: "Watchlist mutations by action and result",
		},
		[]string{"action", "result"}, // action: add, remove
	)

	RevokedTokens = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_revoked_tokens",
			Help: "Number of unexpired tokens on the in-memory revocation list",
		},
	)

	// Badger expires revocations through entry TTLs without notifying us,
	// so only the cumulative count is tracked for every backend.
	TokenRevocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_token_revocations_total",
			Help: "Total number of tokens revoked",
		},
		[]string{"backend"}, // memory, badger
	)

	// Catalog upstream

	CatalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_catalog_requests_total",
			Help: "Upstream catalog requests by operation and result",
		},
		[]string{"operation", "result"}, // result: success, failure, rejected, cached
	)

	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_catalog_request_duration_seconds",
			Help:    "Upstream catalog request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_cache_misses_total",
			Help: "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	// Events and websocket

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_events_published_total",
			Help: "Domain events published by topic and result",
		},
		[]string{"topic", "result"},
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_events_handled_total",
			Help: "Domain events consumed by handler and result",
		},
		[]string{"handler", "result"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_websocket_clients",
			Help: "Connected live-update websocket clients",
		},
	)
)

// RecordAPIRequest records one served HTTP request.
func RecordAPIRequest(method, route, status string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, status).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreOperation records a store call. class is "" on success.
func RecordStoreOperation(operation string, duration time.Duration, class string) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if class != "" {
		StoreOperationErrors.WithLabelValues(operation, class).Inc()
	}
}

// SetStoreAvailable updates the store availability gauge.
func SetStoreAvailable(ok bool) {
	if ok {
		StoreAvailable.Set(1)
	} else {
		StoreAvailable.Set(0)
	}
}

// RecordAuth records an authentication outcome.
func RecordAuth(action, result string) {
	AuthOutcomes.WithLabelValues(action, result).Inc()
}

// RecordWatchlistMutation records an add or remove outcome.
func RecordWatchlistMutation(action, result string) {
	WatchlistMutations.WithLabelValues(action, result).Inc()
}

// RecordCatalogRequest records an upstream catalog call.
func RecordCatalogRequest(operation, result string, duration time.Duration) {
	CatalogRequests.WithLabelValues(operation, result).Inc()
	if result != "cached" && result != "rejected" {
		CatalogRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsPublished.WithLabelValues(topic, result).Inc()
}

// RecordEventHandled records a consumer outcome.
func RecordEventHandled(handler string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	EventsHandled.WithLabelValues(handler, result).Inc()
}
