package models

import "time"

type Poke struct {
	ID        int64     `json:"id"`
	PokerID   int64     `json:"poker_id"`
	PokedID   int64     `json:"poked_id"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// ReceivedPoke is a poke with the poker's username, for the poked user's list.
type ReceivedPoke struct {
	Poke
	PokerUsername string `json:"poker_username"`
}

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
)

type Invite struct {
	ID            int64        `json:"id"`
	InviterID     int64        `json:"inviter_id"`
	Contact       string       `json:"contact"`
	Code          string       `json:"code"`
	Status        InviteStatus `json:"status"`
	BonusUnlocked bool         `json:"bonus_unlocked"`
	AcceptedBy    *int64       `json:"accepted_by,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

type Message struct {
	ID             int64     `json:"id"`
	SenderID       int64     `json:"sender_id"`
	ReceiverID     int64     `json:"receiver_id"`
	SenderUsername string    `json:"sender_username,omitempty"`
	Content        string    `json:"content"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"created_at"`
}

// UnreadCounts is the set of badges pushed with the unread_count event.
type UnreadCounts struct {
	Notifications int64 `json:"notifications"`
	Messages      int64 `json:"messages"`
	Pokes         int64 `json:"pokes"`
}
