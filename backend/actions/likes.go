package actions

import (
	"context"
	"fmt"

	"socialhub/backend/ledger"
	"socialhub/backend/models"
)

type LikeAction string

const (
	Liked   LikeAction = "liked"
	Unliked LikeAction = "unliked"
)

type LikeResult struct {
	PostID       int64      `json:"post_id"`
	Action       LikeAction `json:"action"`
	NewLikeCount int64      `json:"new_like_count"`
}

const likeAttempts = 3

// ToggleLike flips userID's like on the post. Only the liking transition
// notifies, and never when users like their own post.
func (p *Processor) ToggleLike(ctx context.Context, postID, userID int64) (out Outcome[LikeResult], err error) {
	defer func() { p.done("toggle_like", out.Applied, err) }()
	if err := validateID("post", postID); err != nil {
		return out, err
	}
	if err := validateID("user", userID); err != nil {
		return out, err
	}

	var (
		res        = LikeResult{PostID: postID}
		deliveries []models.Delivery
	)
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		post, err := tx.PostByID(ctx, postID)
		if err != nil {
			return err
		}
		liker, err := tx.UserByID(ctx, userID)
		if err != nil {
			return err
		}

		// delete-or-insert on the (post, user) key; a concurrent toggle can
		// make both miss, so try again
		for attempt := 0; res.Action == "" && attempt < likeAttempts; attempt++ {
			removed, err := tx.DeleteLike(ctx, postID, userID)
			if err != nil {
				return err
			}
			if removed {
				res.Action = Unliked
				break
			}
			inserted, err := tx.InsertLike(ctx, postID, userID)
			if err != nil {
				return err
			}
			if inserted {
				res.Action = Liked
			}
		}
		if res.Action == "" {
			return fmt.Errorf("toggle like on post %d: %w: concurrent toggles", postID, models.ErrConflict)
		}

		if res.NewLikeCount, err = tx.CountLikes(ctx, postID); err != nil {
			return err
		}
		if res.Action == Liked && post.AuthorID != userID {
			kind := models.LikeKind{PostID: postID, LikerID: userID}
			return notify(ctx, tx, post.AuthorID, kind, liker.Name(), &deliveries)
		}
		return nil
	})
	if err != nil {
		return Outcome[LikeResult]{}, err
	}
	return applied(res, deliveries), nil
}
