// Marquee - Streaming Catalog Watchlist Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package events

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/marquee/internal/config"
	"github.com/tomtom215/marquee/internal/logging"
	"github.com/tomtom215/marquee/internal/metrics"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus is closed")

// Publisher is what the services depend on. *Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
}

// Bus owns the watermill publisher and subscribers.
//
// Two subscribers are exposed. Shared subscriptions are load-balanced across
// instances (one NATS queue group), which suits side effects that must run
// once per event. Broadcast subscriptions reach every instance, which the
// live-update consumer needs because each instance holds its own sockets.
// With the in-process driver both are the same GoChannel.
type Bus struct {
	publisher message.Publisher
	shared    message.Subscriber
	broadcast message.Subscriber
	logger    watermill.LoggerAdapter
	closers   []io.Closer

	mu     sync.RWMutex
	closed bool
}

// NewWatermillLogger adapts the zerolog-backed slog handler for watermill.
func NewWatermillLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}

// NewBus builds the bus selected by cfg.Driver.
func NewBus(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	if logger == nil {
		logger = NewWatermillLogger()
	}

	switch cfg.Driver {
	case "", "memory":
		return NewMemoryBus(cfg.BufferSize, logger), nil
	case "nats":
		return newNATSBus(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

// NewMemoryBus returns an in-process bus backed by a single GoChannel.
func NewMemoryBus(buffer int64, logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	ch := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: buffer,
	}, logger)

	return &Bus{
		publisher: ch,
		shared:    ch,
		broadcast: ch,
		logger:    logger,
		closers:   []io.Closer{ch},
	}
}

func natsOptions(cfg *config.EventsConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("marquee"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}
}

// newNATSBus uses core NATS subjects. Events are notifications, so the
// at-most-once delivery of core NATS is acceptable and no JetStream stream
// has to be provisioned.
func newNATSBus(cfg *config.EventsConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	opts := natsOptions(cfg, logger)
	marshaler := &wmNats.NATSMarshaler{}
	jetStream := wmNats.JetStreamConfig{Disabled: true}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: opts,
		Marshaler:   marshaler,
		JetStream:   jetStream,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create nats publisher: %w", err)
	}

	subConfig := func(queueGroup string) wmNats.SubscriberConfig {
		return wmNats.SubscriberConfig{
			URL:              cfg.NATSURL,
			QueueGroupPrefix: queueGroup,
			SubscribersCount: 1,
			CloseTimeout:     cfg.CloseTimeout,
			NatsOptions:      opts,
			Unmarshaler:      marshaler,
			JetStream:        jetStream,
		}
	}

	shared, err := wmNats.NewSubscriber(subConfig(cfg.QueueGroup), logger)
	if err != nil {
		_ = pub.Close()
		return nil, fmt.Errorf("create nats queue subscriber: %w", err)
	}

	broadcast, err := wmNats.NewSubscriber(subConfig(""), logger)
	if err != nil {
		_ = pub.Close()
		_ = shared.Close()
		return nil, fmt.Errorf("create nats broadcast subscriber: %w", err)
	}

	return &Bus{
		publisher: pub,
		shared:    shared,
		broadcast: broadcast,
		logger:    logger,
		closers:   []io.Closer{pub, shared, broadcast},
	}, nil
}

// Publish encodes event as JSON and publishes it on topic. The request ID
// and account ID from ctx travel as metadata.
func (b *Bus) Publish(ctx context.Context, topic string, event any) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		metrics.RecordEventPublished(topic, ErrBusClosed)
		return ErrBusClosed
	}

	payload, err := json.Marshal(event)
	if err != nil {
		metrics.RecordEventPublished(topic, err)
		return fmt.Errorf("encode %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataEventType, topic)
	if id := logging.RequestIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataRequestID, id)
	}
	if id := logging.AccountIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataAccountID, id)
	}

	err = b.publisher.Publish(topic, msg)
	metrics.RecordEventPublished(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Close shuts the publisher and subscribers down. Safe to call twice.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// NopPublisher discards events. Used when no bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }
