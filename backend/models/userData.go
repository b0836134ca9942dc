package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"-"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio"`
	Avatar       string    `json:"avatar"`
	PokeCount    int64     `json:"poke_count"`
	InviteCode   string    `json:"invite_code,omitempty"`
	InvitedBy    *int64    `json:"invited_by,omitempty"`
	Premium      bool      `json:"premium"`
	CreatedAt    time.Time `json:"created_at"`
}

// Name is what notifications call the user.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

type RegistrationData struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	InviteCode  string `json:"invite_code"`
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Profile is a user as seen by a viewer.
type Profile struct {
	User
	PostCount int64 `json:"post_count"`
	IsSelf    bool  `json:"is_self"`
}

type Contact struct {
	UserID         int64      `json:"user_id"`
	Username       string     `json:"username"`
	DisplayName    string     `json:"display_name"`
	Avatar         string     `json:"avatar"`
	UnreadMessages int64      `json:"unread_messages"`
	LastMessageID  *int64     `json:"last_message_id,omitempty"`
	LastMessageAt  *time.Time `json:"last_message_at,omitempty"`
}
