// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package store

import (
	"context"
	"time"

	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// Reconnector is a store whose connection can be checked and rebuilt.
// Satisfied by *MongoStore and *MemoryStore.
type Reconnector interface {
	Ping(ctx context.Context) error
	Reconnect(ctx context.Context) error
}

// Preparer is implemented by stores with setup that must succeed before
// they serve requests, such as MongoStore's unique indexes.
type Preparer interface {
	Prepare(ctx context.Context) error
}

// Connector periodically pings the store and keeps State current. After a
// failed check it waits a fixed delay and rebuilds the connection, repeating
// until the store answers again and any pending setup has completed. It never touches in-flight requests.
type Connector struct {
	store          Reconnector
	state          *State
	interval       time.Duration
	reconnectDelay time.Duration
	pingTimeout    time.Duration
}

// NewConnector creates a Connector. Zero durations fall back to defaults.
func NewConnector(store Reconnector, state *State, interval, reconnectDelay, pingTimeout time.Duration) *Connector {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if reconnectDelay <= 0 {
		reconnectDelay = 5 * time.Second
	}
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	return &Connector{
		store:          store,
		state:          state,
		interval:       interval,
		reconnectDelay: reconnectDelay,
		pingTimeout:    pingTimeout,
	}
}

// Serve runs until ctx is canceled. It implements suture.Service.
func (c *Connector) Serve(ctx context.Context) error {
	log := logging.WithComponent("store-connector")

	for {
		if err := c.check(ctx); err != nil {
			if c.state.MarkUnavailable(err) {
				log.Error().Err(err).Msg("store unavailable")
			}

			if !sleep(ctx, c.reconnectDelay) {
				return ctx.Err()
			}

			metrics.StoreReconnects.Inc()
			rctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
			err = c.store.Reconnect(rctx)
			cancel()
			if err != nil {
				log.Warn().Err(err).Dur("retry_in", c.reconnectDelay).Msg("store reconnect failed")
			}
			// Re-check before reporting available.
			continue
		}

		if c.state.MarkAvailable() {
			log.Info().Msg("store available")
		}

		if !sleep(ctx, c.interval) {
			return ctx.Err()
		}
	}
}

// check pings the store and, for a Preparer, completes any pending setup.
// A failed setup counts as a failed check.
func (c *Connector) check(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()
	if err := c.store.Ping(pctx); err != nil {
		return err
	}
	if p, ok := c.store.(Preparer); ok {
		return p.Prepare(pctx)
	}
	return nil
}

func (c *Connector) String() string {
	return "store-connector"
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
