// Package nats publishes task lifecycle events over NATS JetStream.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const streamName = "ARENA"

// Handler processes a received event message.
type Handler func(subject string, data []byte) error

// Events implements broadcast.Broadcaster using NATS JetStream. Each
// lifecycle event is published on "arena.events.<type>" so external
// graders can replay or tail execution streams.
type Events struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Connect establishes a connection to NATS and ensures the JetStream stream exists.
func Connect(ctx context.Context, url string) (*Events, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream init: %w", err)
	}

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     streamName,
		Subjects: []string{"arena.>"},
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream stream create: %w", err)
	}

	slog.Info("nats connected", "url", url, "stream", streamName)
	return &Events{nc: nc, js: js}, nil
}

// BroadcastEvent publishes the payload as JSON on the event's subject.
func (e *Events) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("event marshal failed", "type", eventType, "error", err)
		return
	}
	subject := "arena.events." + eventType
	if _, err := e.js.Publish(ctx, subject, data); err != nil {
		slog.Error("nats publish failed", "subject", subject, "error", err)
	}
}

// Subscribe registers a handler for events on the given subject pattern.
// The returned func stops consumption.
func (e *Events) Subscribe(ctx context.Context, subject string, handler Handler) (func(), error) {
	consumer, err := e.js.CreateOrUpdateConsumer(ctx, streamName, jetstream.ConsumerConfig{
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("nats consumer create: %w", err)
	}

	cons, err := consumer.Consume(func(msg jetstream.Msg) {
		if err := handler(msg.Subject(), msg.Data()); err != nil {
			slog.Error("event handler failed", "subject", msg.Subject(), "error", err)
			if nakErr := msg.Nak(); nakErr != nil {
				slog.Error("nats nak failed", "error", nakErr)
			}
			return
		}
		if ackErr := msg.Ack(); ackErr != nil {
			slog.Error("nats ack failed", "error", ackErr)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("nats consume: %w", err)
	}

	return cons.Stop, nil
}

// Close shuts down the NATS connection.
func (e *Events) Close() error {
	e.nc.Close()
	return nil
}
