// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// RouterConfig holds consumer router settings.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         10 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 100 * time.Millisecond,
		RetryMaxInterval:     2 * time.Second,
	}
}

// Router runs the event consumers on top of a Bus.
type Router struct {
	router *message.Router
	bus    *Bus
}

// NewRouter creates a watermill router with panic recovery and retry.
func NewRouter(bus *Bus, cfg RouterConfig, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = bus.logger
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: cfg.CloseTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      2.0,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	return &Router{router: wmRouter, bus: bus}, nil
}

// AddAuditConsumer subscribes the audit log to every topic through the
// shared subscription.
func (r *Router) AddAuditConsumer() {
	for _, topic := range []string{TopicAccountRegistered, TopicWatchlistAdded, TopicWatchlistRemoved} {
		r.router.AddConsumerHandler("audit."+topic, topic, r.bus.shared, AuditHandler)
	}
}

// AddLiveUpdateConsumer forwards watchlist changes to n through the
// broadcast subscription.
func (r *Router) AddLiveUpdateConsumer(n Notifier) {
	handler := LiveUpdateHandler(n)
	for _, topic := range []string{TopicWatchlistAdded, TopicWatchlistRemoved} {
		r.router.AddConsumerHandler("live."+topic, topic, r.bus.broadcast, handler)
	}
}

// Running is closed once all handlers have subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Serve runs the router until ctx is canceled. It implements
// suture.Service. A watermill router cannot be restarted, so a second
// call returns an error.
func (r *Router) Serve(ctx context.Context) error {
	if err := r.router.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

func (r *Router) String() string {
	return "event-router"
}
