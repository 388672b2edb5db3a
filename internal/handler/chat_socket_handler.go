package handler

import (
	"context"

	"prompt-builder-bot/internal/dto"
	"prompt-builder-bot/internal/pkg/logger"
	"prompt-builder-bot/internal/pkg/serverutils"
	"prompt-builder-bot/internal/service"
	internalWS "prompt-builder-bot/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ChatSocketHandler struct {
	hub    *internalWS.Hub
	ctx    context.Context
	logger logger.ILogger
}

// NewChatSocketHandler serves sockets whose frames live as long as ctx
func NewChatSocketHandler(ctx context.Context, hub *internalWS.Hub, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{hub: hub, ctx: ctx, logger: log}
}

// Dispatch routes a frame to the dialogue: actions win over text
func Dispatch(dialogue service.IDialogueService) internalWS.FrameHandler {
	return func(ctx context.Context, userID string, frame dto.SocketFrame) *dto.Reply {
		if frame.Action != "" {
			return dialogue.HandleAction(ctx, userID, frame.Action)
		}
		return dialogue.HandleMessage(ctx, userID, frame.Text)
	}
}

// ServeWs upgrades an authenticated request. It runs behind JwtMiddleware,
// which also accepts the token as ?token= for browsers.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	userID := serverutils.UserID(c)
	if userID == "" {
		return fiber.ErrUnauthorized
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatSocketHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.ctx, h.hub, conn, userID)
		h.logger.Info("ChatSocketHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}
