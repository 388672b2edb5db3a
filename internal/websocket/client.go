package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"prompt-builder-bot/internal/dto"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

var ErrEmptyFrame = errors.New("frame has neither text nor action")

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	Conn *websocket.Conn

	UserID string

	// Buffered channel of outbound messages.
	Send chan []byte
}

// DecodeFrame reads an inbound frame. Exactly one of text or action is used;
// an action wins when both are set.
func DecodeFrame(data []byte) (dto.SocketFrame, error) {
	var frame dto.SocketFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return dto.SocketFrame{}, err
	}
	if frame.Action == "" && frame.Text == "" {
		return dto.SocketFrame{}, ErrEmptyFrame
	}
	return frame, nil
}

// readPump feeds inbound frames to the dialogue and fans replies out through
// the hub.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("WebSocket", "Unexpected close", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
			}
			return
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			c.Hub.logger.Warn("WebSocket", "Bad frame", map[string]interface{}{
				"user_id": c.UserID,
				"error":   err.Error(),
			})
			continue
		}

		reply := c.Hub.handler(ctx, c.UserID, frame)
		c.Hub.Send(ctx, c.UserID, reply)
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One reply per frame; replies are JSON documents.
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
