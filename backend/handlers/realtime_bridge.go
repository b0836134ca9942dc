package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"socialhub/backend/models"
	"socialhub/backend/ws"
)

type peerFrame struct {
	With int64 `json:"with"`
}

type typingFrame struct {
	ReceiverID int64 `json:"receiver_id"`
	Typing     bool  `json:"typing"`
}

type sendMessageFrame struct {
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

type joinedPayload struct {
	Room models.Room `json:"room"`
	With int64       `json:"with"`
}

var errInternal = errors.New("internal server error")

// HandleFrame dispatches inbound websocket frames:
// {"type": "join"|"leave"|"typing"|"send_message"|"mark_read", "data": {...}}.
func (a *API) HandleFrame(ctx context.Context, c *ws.Client, f ws.Frame) error {
	var err error
	switch f.Type {
	case "join":
		err = a.joinConversation(ctx, c, f)
	case "leave":
		var p peerFrame
		if err = f.Decode(&p); err == nil {
			c.Hub().Leave(c, models.ConversationRoom(c.UserID, p.With))
		}
	case "typing":
		var p typingFrame
		if err = f.Decode(&p); err == nil {
			out, terr := a.proc.Typing(c.UserID, p.ReceiverID, p.Typing, c.ID)
			if err = terr; err == nil {
				a.pub.Publish(ctx, out.Deliveries...)
			}
		}
	case "send_message":
		var p sendMessageFrame
		if err = f.Decode(&p); err == nil {
			out, serr := a.proc.SendMessage(ctx, c.UserID, p.ReceiverID, p.Content)
			if err = serr; err == nil {
				a.pub.Publish(ctx, out.Deliveries...)
			}
		}
	case "mark_read":
		var p peerFrame
		if err = f.Decode(&p); err == nil {
			out, merr := a.proc.MarkConversationRead(ctx, c.UserID, p.With)
			if err = merr; err == nil {
				a.pub.Publish(ctx, out.Deliveries...)
			}
		}
	default:
		return fmt.Errorf("%w: unknown frame type %q", models.ErrValidation, f.Type)
	}
	if err != nil && StatusFor(err) == http.StatusInternalServerError {
		a.log.Error().Err(err).Str("frame", f.Type).Int64("user_id", c.UserID).Msg("frame failed")
		return errInternal
	}
	return err
}

func (a *API) joinConversation(ctx context.Context, c *ws.Client, f ws.Frame) error {
	var p peerFrame
	if err := f.Decode(&p); err != nil {
		return err
	}
	if p.With <= 0 || p.With == c.UserID {
		return fmt.Errorf("%w: invalid conversation peer", models.ErrValidation)
	}
	if err := a.asm.UserExists(ctx, p.With); err != nil {
		return err
	}
	room := models.ConversationRoom(c.UserID, p.With)
	c.Hub().Join(c, room)
	c.Reply(models.EventJoined, joinedPayload{Room: room, With: p.With})
	return nil
}
