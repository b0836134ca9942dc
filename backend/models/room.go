package models

import "fmt"

// Room names a delivery group of live sessions.
type Room string

func UserRoom(userID int64) Room {
	return Room(fmt.Sprintf("user:%d", userID))
}

// ConversationRoom is keyed by the sorted pair so both participants share it.
func ConversationRoom(a, b int64) Room {
	if a > b {
		a, b = b, a
	}
	return Room(fmt.Sprintf("conversation:%d:%d", a, b))
}

// Events pushed to live sessions.
const (
	EventNewNotification = "new_notification"
	EventNewPoke         = "new_poke"
	EventReceiveMessage  = "receive_message"
	EventMessageNotice   = "message_notice"
	EventMessagesRead    = "messages_read"
	EventTyping          = "typing"
	EventUnreadCount     = "unread_count"
	EventJoined          = "joined"
	EventError           = "error"
)

// Delivery is one event addressed to a room. ExceptClient, when set, names a
// connection that must not receive it.
type Delivery struct {
	Room         Room   `json:"room"`
	Event        string `json:"event"`
	Payload      any    `json:"payload"`
	ExceptClient string `json:"except_client,omitempty"`
}

// NotificationEvent is the payload of new_notification and new_poke.
type NotificationEvent struct {
	Notification Notification `json:"notification"`
	UnreadCount  int64        `json:"unread_count"`
}

// MessageNotice tells the receiver's other sessions a message arrived.
type MessageNotice struct {
	Message Message      `json:"message"`
	Unread  UnreadCounts `json:"unread"`
}

type TypingEvent struct {
	SenderID   int64 `json:"sender_id"`
	ReceiverID int64 `json:"receiver_id"`
	Typing     bool  `json:"typing"`
}

type MessagesReadEvent struct {
	ReaderID int64 `json:"reader_id"`
	OtherID  int64 `json:"other_id"`
	Count    int64 `json:"count"`
}
