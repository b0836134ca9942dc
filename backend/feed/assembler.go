// Package feed assembles viewer-relative read projections. Nothing here is
// cached: every call re-reads the ledger.
package feed

import (
	"context"
	"fmt"

	"socialhub/backend/models"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// Reader is the read side of the ledger.
type Reader interface {
	Feed(ctx context.Context, viewerID int64, limit int) ([]models.FeedPost, error)
	Wall(ctx context.Context, viewerID, ownerID int64, limit int) ([]models.FeedPost, error)
	Comments(ctx context.Context, postID int64) ([]models.Comment, error)
	PostByID(ctx context.Context, id int64) (models.Post, error)
	Notifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
	UnreadCounts(ctx context.Context, userID int64) (models.UnreadCounts, error)
	Conversation(ctx context.Context, a, b int64, limit int) ([]models.Message, error)
	Contacts(ctx context.Context, viewerID int64) ([]models.Contact, error)
	Pokes(ctx context.Context, userID int64, limit int) ([]models.ReceivedPoke, error)
	Profile(ctx context.Context, viewerID, userID int64) (models.Profile, error)
	UsersExist(ctx context.Context, ids []int64) error
}

type Assembler struct {
	r Reader
}

func New(r Reader) *Assembler {
	return &Assembler{r: r}
}

// Limit applies the default and the cap. Negative limits are rejected.
func Limit(n int) (int, error) {
	switch {
	case n < 0:
		return 0, fmt.Errorf("%w: limit must not be negative", models.ErrValidation)
	case n == 0:
		return DefaultLimit, nil
	case n > MaxLimit:
		return MaxLimit, nil
	}
	return n, nil
}

// Feed is every post, newest first, with live counts for viewer.
func (a *Assembler) Feed(ctx context.Context, viewerID int64, limit int) ([]models.FeedPost, error) {
	limit, err := Limit(limit)
	if err != nil {
		return nil, err
	}
	return a.r.Feed(ctx, viewerID, limit)
}

func (a *Assembler) Wall(ctx context.Context, viewerID, ownerID int64, limit int) ([]models.FeedPost, error) {
	limit, err := Limit(limit)
	if err != nil {
		return nil, err
	}
	if err := a.r.UsersExist(ctx, []int64{ownerID}); err != nil {
		return nil, err
	}
	return a.r.Wall(ctx, viewerID, ownerID, limit)
}

// Comments are oldest first.
func (a *Assembler) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	if _, err := a.r.PostByID(ctx, postID); err != nil {
		return nil, err
	}
	return a.r.Comments(ctx, postID)
}

func (a *Assembler) Notifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	limit, err := Limit(limit)
	if err != nil {
		return nil, err
	}
	return a.r.Notifications(ctx, userID, limit)
}

func (a *Assembler) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	return a.r.UnreadCount(ctx, userID)
}

func (a *Assembler) UnreadCounts(ctx context.Context, userID int64) (models.UnreadCounts, error) {
	return a.r.UnreadCounts(ctx, userID)
}

// Conversation is the newest limit messages between a and b, oldest first.
// It is the same sequence for (a, b) and (b, a).
func (a *Assembler) Conversation(ctx context.Context, userA, userB int64, limit int) ([]models.Message, error) {
	limit, err := Limit(limit)
	if err != nil {
		return nil, err
	}
	if err := a.r.UsersExist(ctx, []int64{userB}); err != nil {
		return nil, err
	}
	return a.r.Conversation(ctx, userA, userB, limit)
}

func (a *Assembler) Contacts(ctx context.Context, viewerID int64) ([]models.Contact, error) {
	return a.r.Contacts(ctx, viewerID)
}

func (a *Assembler) Pokes(ctx context.Context, userID int64, limit int) ([]models.ReceivedPoke, error) {
	limit, err := Limit(limit)
	if err != nil {
		return nil, err
	}
	return a.r.Pokes(ctx, userID, limit)
}

// UserExists is ErrNotFound for an unknown id.
func (a *Assembler) UserExists(ctx context.Context, id int64) error {
	return a.r.UsersExist(ctx, []int64{id})
}

func (a *Assembler) Profile(ctx context.Context, viewerID, userID int64) (models.Profile, error) {
	return a.r.Profile(ctx, viewerID, userID)
}
