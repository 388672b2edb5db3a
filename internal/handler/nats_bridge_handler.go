package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"prompt-builder-bot/internal/dto"
	"prompt-builder-bot/internal/pkg/logger"
	internalWS "prompt-builder-bot/internal/websocket"
	"prompt-builder-bot/pkg/events"
	pktNats "prompt-builder-bot/pkg/nats"
)

const (
	InboundSubject   = pktNats.SubjectPrefix + "inbound.>"
	InboundDurable   = "prompt_builder_inbound"
	outboundTypePref = "outbound."
)

// inboundAckMargin covers the dialogue work around the model call
const inboundAckMargin = 30 * time.Second

// InboundConsumerOptions configures the inbound consumer for turns lasting up
// to maxTurn. Each message is delivered once: a turn may already have moved
// the dialogue when it fails.
func InboundConsumerOptions(maxTurn time.Duration) pktNats.ConsumerOptions {
	return pktNats.ConsumerOptions{
		AckWait:    maxTurn + inboundAckMargin,
		MaxDeliver: 1,
	}
}

// ReplyPublisher sends replies back over the bus
type ReplyPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// NatsBridgeHandler lets other services drive the dialogue over NATS.
// Inbound payloads are {user_id, text} or {user_id, action}; replies go to
// events.outbound.<user_id>.
type NatsBridgeHandler struct {
	handle    internalWS.FrameHandler
	publisher ReplyPublisher
	logger    logger.ILogger
}

func NewNatsBridgeHandler(handle internalWS.FrameHandler, publisher ReplyPublisher, log logger.ILogger) *NatsBridgeHandler {
	return &NatsBridgeHandler{handle: handle, publisher: publisher, logger: log}
}

// OutboundType is the event type a reply for userID is published as
func OutboundType(userID string) string {
	return outboundTypePref + userID
}

// FrameFromEvent reads an inbound bus payload
func FrameFromEvent(event events.Event) (dto.SocketFrame, error) {
	data := event.Payload()
	frame := dto.SocketFrame{}
	frame.UserID, _ = data["user_id"].(string)
	frame.Text, _ = data["text"].(string)
	if action, ok := data["action"].(string); ok {
		frame.Action = dto.Action(action)
	}

	if frame.UserID == "" {
		return frame, fmt.Errorf("inbound %s: missing user_id", event.EventType())
	}
	if frame.Action == "" && strings.TrimSpace(frame.Text) == "" {
		return frame, fmt.Errorf("inbound %s: neither text nor action", event.EventType())
	}
	return frame, nil
}

// Handle is a pkg/nats EventHandler. It never asks for redelivery: a message
// that already moved the dialogue must not be applied twice.
func (h *NatsBridgeHandler) Handle(ctx context.Context, event events.Event) error {
	frame, err := FrameFromEvent(event)
	if err != nil {
		h.logger.Warn("NatsBridge", "Dropping inbound message", map[string]interface{}{"error": err.Error()})
		return nil
	}

	reply := h.handle(ctx, frame.UserID, frame)

	out := events.New(OutboundType(frame.UserID), map[string]interface{}{
		"user_id": frame.UserID,
		"kind":    string(reply.Kind),
		"text":    reply.Text,
		"state":   reply.State,
		"actions": reply.Actions,
	})
	if reply.File != nil {
		out.Data["file"] = map[string]interface{}{
			"filename": reply.File.Filename,
			"caption":  reply.File.Caption,
			"content":  string(reply.File.Content),
		}
	}
	if err := h.publisher.Publish(ctx, out); err != nil {
		h.logger.Error("NatsBridge", "Failed to publish reply", map[string]interface{}{
			"user_id": frame.UserID,
			"error":   err.Error(),
		})
	}
	return nil
}
