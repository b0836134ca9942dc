package ws

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"socialhub/backend/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8 << 10
)

// InboundHandler handles frames sent by a client. Returned errors are sent
// back to that client as an error frame.
type InboundHandler interface {
	HandleFrame(ctx context.Context, c *Client, f Frame) error
}

type Client struct {
	ID       string
	UserID   int64
	Username string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, username string, buffer int) *Client {
	id := uuid.NewString()
	return &Client{
		ID:       id,
		UserID:   userID,
		Username: username,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, buffer),
		log:      hub.log.With().Str("client", id).Int64("user_id", userID).Logger(),
	}
}

func (c *Client) Hub() *Hub { return c.hub }

// Reply sends a frame to this client only. Like any delivery it is
// dropped when the client's buffer is full.
func (c *Client) Reply(event string, payload any) {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		c.log.Error().Err(err).Str("event", event).Msg("encode reply")
		return
	}
	select {
	case c.hub.direct <- directFrame{client: c, frame: frame}:
	case <-c.hub.done:
	}
}

// ReadPump decodes inbound frames until the connection fails, then
// unregisters the client.
func (c *Client) ReadPump(ctx context.Context, h InboundHandler) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug().Err(err).Msg("read failed")
			}
			return
		}
		var f Frame
		if err := json.Unmarshal(message, &f); err != nil {
			c.Reply(models.EventError, errorPayload{Error: "malformed frame"})
			continue
		}
		if err := h.HandleFrame(ctx, c, f); err != nil {
			c.Reply(models.EventError, errorPayload{Type: f.Type, Error: err.Error()})
		}
	}
}

// WritePump forwards queued frames and keeps the connection alive with
// pings. It exits when the hub closes the send channel.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.log.Debug().Err(err).Msg("write failed")
				}
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
