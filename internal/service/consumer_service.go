package service

import (
	"context"

	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Relay forwards domain events outside the process (NATS JetStream)
type Relay interface {
	Publish(ctx context.Context, event events.Event) error
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	relay      Relay
	logger     logger.ILogger
}

// NewConsumerService subscribes to the event topic. relay may be nil, in which
// case events are only logged.
func NewConsumerService(subscriber message.Subscriber, topicName string, relay Relay, logger logger.ILogger) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		relay:      relay,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	event, ok, err := events.Decode(msg.Payload)
	if err != nil || !ok {
		details := map[string]interface{}{"message_id": msg.UUID}
		if err != nil {
			details["error"] = err.Error()
		}
		cs.logger.Warn("EventConsumer", "Dropping malformed event", details)
		msg.Ack()
		return
	}

	cs.logger.Info("EventConsumer", "Domain event", map[string]interface{}{
		"id":      event.ID,
		"type":    event.Type,
		"payload": event.Data,
	})

	if cs.relay == nil {
		msg.Ack()
		return
	}

	// gochannel redelivers a nacked message at once, so a relay outage would
	// spin here. Relay failures are logged and the event is dropped.
	if err := cs.relay.Publish(ctx, event); err != nil {
		cs.logger.Error("EventConsumer", "Relay failed", map[string]interface{}{
			"id":    event.ID,
			"type":  event.Type,
			"error": err.Error(),
		})
	}
	msg.Ack()
}
