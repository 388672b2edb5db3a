package service

import (
	"context"
	"fmt"

	"prompt-builder-bot/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// EventTopic is the in-process topic domain events are published on
const EventTopic = "prompt_builder_events"

type IPublisherService interface {
	Publish(ctx context.Context, event events.Event) error
}

type publisherService struct {
	publisher message.Publisher
	topicName string
}

func NewPublisherService(publisher message.Publisher, topicName string) IPublisherService {
	return &publisherService{
		publisher: publisher,
		topicName: topicName,
	}
}

func (ps *publisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Encode(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.EventType(), err)
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", event.EventType())

	return ps.publisher.Publish(ps.topicName, msg)
}

// noopPublisher is used when no bus is wired
type noopPublisher struct{}

func NewNoopPublisherService() IPublisherService {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, events.Event) error {
	return nil
}
