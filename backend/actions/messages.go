package actions

import (
	"context"

	"socialhub/backend/ledger"
	"socialhub/backend/models"
)

// SendMessage stores a direct message. It creates no notification: the
// conversation room gets the message, sender included, and the receiver's
// user room gets a notice for the inbox badge.
func (p *Processor) SendMessage(ctx context.Context, senderID, receiverID int64, content string) (out Outcome[models.Message], err error) {
	defer func() { p.done("send_message", out.Applied, err) }()
	if err := validatePair(senderID, receiverID); err != nil {
		return out, err
	}
	content, err = text("message", content, maxMessageLen)
	if err != nil {
		return out, err
	}

	msg := models.Message{SenderID: senderID, ReceiverID: receiverID, Content: content}
	var unread models.UnreadCounts
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		sender, err := tx.UserByID(ctx, senderID)
		if err != nil {
			return err
		}
		if err := tx.UsersExist(ctx, []int64{receiverID}); err != nil {
			return err
		}
		if err := tx.InsertMessage(ctx, &msg); err != nil {
			return err
		}
		msg.SenderUsername = sender.Username
		unread, err = tx.UnreadCounts(ctx, receiverID)
		return err
	})
	if err != nil {
		return Outcome[models.Message]{}, err
	}
	return applied(msg, []models.Delivery{
		{Room: models.ConversationRoom(senderID, receiverID), Event: models.EventReceiveMessage, Payload: msg},
		{Room: models.UserRoom(receiverID), Event: models.EventMessageNotice, Payload: models.MessageNotice{Message: msg, Unread: unread}},
	}), nil
}

// Typing relays a typing indicator to the conversation room. The sending
// connection is excluded so it does not see its own indicator.
func (p *Processor) Typing(senderID, receiverID int64, typing bool, senderConn string) (Outcome[models.TypingEvent], error) {
	if err := validatePair(senderID, receiverID); err != nil {
		return Outcome[models.TypingEvent]{}, err
	}
	ev := models.TypingEvent{SenderID: senderID, ReceiverID: receiverID, Typing: typing}
	return applied(ev, []models.Delivery{{
		Room:         models.ConversationRoom(senderID, receiverID),
		Event:        models.EventTyping,
		Payload:      ev,
		ExceptClient: senderConn,
	}}), nil
}

// MarkConversationRead marks what otherID sent readerID as read and tells
// the conversation room.
func (p *Processor) MarkConversationRead(ctx context.Context, readerID, otherID int64) (out Outcome[int64], err error) {
	defer func() { p.done("mark_conversation_read", out.Applied, err) }()
	if err := validatePair(readerID, otherID); err != nil {
		return out, err
	}

	var (
		marked int64
		badge  models.Delivery
	)
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) (err error) {
		if err = tx.UsersExist(ctx, []int64{otherID}); err != nil {
			return err
		}
		if marked, err = tx.MarkConversationRead(ctx, readerID, otherID); err != nil {
			return err
		}
		badge, err = unreadDelivery(ctx, tx, readerID)
		return err
	})
	if err != nil {
		return Outcome[int64]{}, err
	}
	return applied(marked, []models.Delivery{
		{
			Room:    models.ConversationRoom(readerID, otherID),
			Event:   models.EventMessagesRead,
			Payload: models.MessagesReadEvent{ReaderID: readerID, OtherID: otherID, Count: marked},
		},
		badge,
	}), nil
}

func validatePair(a, b int64) error {
	if err := validateID("sender", a); err != nil {
		return err
	}
	if err := validateID("receiver", b); err != nil {
		return err
	}
	if a == b {
		return invalid("cannot message yourself")
	}
	return nil
}
