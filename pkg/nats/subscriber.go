package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler is a function that processes an event.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber handles listening for events from NATS.
type Subscriber struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger
}

func NewSubscriber(url string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js, logger: log}, nil
}

// DefaultAckWait is the JetStream ack deadline used when none is configured
const DefaultAckWait = 30 * time.Second

// ConsumerOptions bound how long a message may stay unacked and how often
// the server may deliver it. Zero values keep the server defaults.
type ConsumerOptions struct {
	AckWait    time.Duration
	MaxDeliver int
}

// ConsumerConfig is the durable consumer Subscribe creates
func ConsumerConfig(subject, durableName string, opts ConsumerOptions) jetstream.ConsumerConfig {
	cfg := jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       opts.AckWait,
	}
	if opts.MaxDeliver > 0 {
		cfg.MaxDeliver = opts.MaxDeliver
	}
	return cfg
}

// Subscribe registers a handler for a subject pattern on a durable consumer.
// Failed handlers Nak the message so it is redelivered, up to MaxDeliver.
// While a handler runs the ack deadline is extended, so a slow handler is
// not redelivered behind its back.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, opts ConsumerOptions, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, ConsumerConfig(subject, durableName, opts))
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	ackWait := opts.AckWait
	if ackWait <= 0 {
		ackWait = DefaultAckWait
	}

	_, err = consumer.Consume(func(msg jetstream.Msg) {
		event, err := ToEvent(msg.Subject(), msg.Data())
		if err != nil {
			s.logger.Warn("NATS", "Dropping undecodable message", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
			_ = msg.Term()
			return
		}

		done := make(chan struct{})
		go keepAlive(msg, ackWait/2, done)
		err = handler(ctx, event)
		close(done)

		if err != nil {
			s.logger.Error("NATS", "Handler failed", map[string]interface{}{
				"subject": msg.Subject(),
				"error":   err.Error(),
			})
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	s.logger.Info("NATS", "Subscribed", map[string]interface{}{
		"subject": subject,
		"durable": durableName,
	})
	return nil
}

// keepAlive resets the ack deadline of msg every interval until done closes
func keepAlive(msg jetstream.Msg, interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			_ = msg.InProgress()
		}
	}
}

// ToEvent decodes a message body. Bodies that are not event envelopes become
// events typed after the subject.
func ToEvent(subject string, data []byte) (events.Event, error) {
	evt, ok, err := events.Decode(data)
	if err != nil {
		return nil, err
	}
	if ok {
		return evt, nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return events.BaseEvent{
		Type:       strings.TrimPrefix(subject, SubjectPrefix),
		Data:       payload,
		OccurredAt: time.Now().UTC(),
	}, nil
}

// Close closes the connection.
func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
