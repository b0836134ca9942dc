package models

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationLike           NotificationType = "like"
	NotificationComment        NotificationType = "comment"
	NotificationWallPost       NotificationType = "wall_post"
	NotificationTag            NotificationType = "tag"
	NotificationPoke           NotificationType = "poke"
	NotificationInviteAccepted NotificationType = "invite_accepted"
	NotificationWelcome        NotificationType = "welcome"
)

// NotificationKind is the closed set of things a notification can be about.
// Each variant carries exactly the ids it needs; the row stores them as
// related_id and source_user_id.
type NotificationKind interface {
	Type() NotificationType
	RelatedID() *int64
	SourceUserID() *int64
	notificationKind()
}

type LikeKind struct {
	PostID  int64
	LikerID int64
}

type CommentKind struct {
	PostID      int64
	CommenterID int64
}

type WallPostKind struct {
	PostID   int64
	AuthorID int64
}

type TagKind struct {
	PostID   int64
	TaggerID int64
}

type PokeKind struct {
	PokeID  int64
	PokerID int64
}

type InviteAcceptedKind struct {
	InviteID  int64
	NewUserID int64
}

type WelcomeKind struct{}

func (LikeKind) Type() NotificationType           { return NotificationLike }
func (k LikeKind) RelatedID() *int64              { return &k.PostID }
func (k LikeKind) SourceUserID() *int64           { return &k.LikerID }
func (CommentKind) Type() NotificationType        { return NotificationComment }
func (k CommentKind) RelatedID() *int64           { return &k.PostID }
func (k CommentKind) SourceUserID() *int64        { return &k.CommenterID }
func (WallPostKind) Type() NotificationType       { return NotificationWallPost }
func (k WallPostKind) RelatedID() *int64          { return &k.PostID }
func (k WallPostKind) SourceUserID() *int64       { return &k.AuthorID }
func (TagKind) Type() NotificationType            { return NotificationTag }
func (k TagKind) RelatedID() *int64               { return &k.PostID }
func (k TagKind) SourceUserID() *int64            { return &k.TaggerID }
func (PokeKind) Type() NotificationType           { return NotificationPoke }
func (k PokeKind) RelatedID() *int64              { return &k.PokeID }
func (k PokeKind) SourceUserID() *int64           { return &k.PokerID }
func (InviteAcceptedKind) Type() NotificationType { return NotificationInviteAccepted }
func (k InviteAcceptedKind) RelatedID() *int64    { return &k.InviteID }
func (k InviteAcceptedKind) SourceUserID() *int64 { return &k.NewUserID }
func (WelcomeKind) Type() NotificationType        { return NotificationWelcome }
func (WelcomeKind) RelatedID() *int64             { return nil }
func (WelcomeKind) SourceUserID() *int64          { return nil }

func (LikeKind) notificationKind()           {}
func (CommentKind) notificationKind()        {}
func (WallPostKind) notificationKind()       {}
func (TagKind) notificationKind()            {}
func (PokeKind) notificationKind()           {}
func (InviteAcceptedKind) notificationKind() {}
func (WelcomeKind) notificationKind()        {}

// DecodeKind rebuilds the variant from a stored row.
func DecodeKind(t NotificationType, related, source *int64) (NotificationKind, error) {
	if t == NotificationWelcome {
		return WelcomeKind{}, nil
	}
	if related == nil || source == nil {
		return nil, fmt.Errorf("notification %q: missing related or source id", t)
	}
	switch t {
	case NotificationLike:
		return LikeKind{PostID: *related, LikerID: *source}, nil
	case NotificationComment:
		return CommentKind{PostID: *related, CommenterID: *source}, nil
	case NotificationWallPost:
		return WallPostKind{PostID: *related, AuthorID: *source}, nil
	case NotificationTag:
		return TagKind{PostID: *related, TaggerID: *source}, nil
	case NotificationPoke:
		return PokeKind{PokeID: *related, PokerID: *source}, nil
	case NotificationInviteAccepted:
		return InviteAcceptedKind{InviteID: *related, NewUserID: *source}, nil
	}
	return nil, fmt.Errorf("unknown notification type %q", t)
}

type Notification struct {
	ID           int64            `json:"id"`
	UserID       int64            `json:"user_id"`
	Type         NotificationType `json:"type"`
	Content      string           `json:"content"`
	RelatedID    *int64           `json:"related_id,omitempty"`
	SourceUserID *int64           `json:"source_user_id,omitempty"`
	Read         bool             `json:"read"`
	CreatedAt    time.Time        `json:"created_at"`
	Kind         NotificationKind `json:"-"`
}
