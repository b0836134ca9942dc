package actions

import (
	"context"
	"strings"

	"socialhub/backend/ledger"
	"socialhub/backend/models"
)

type NewPost struct {
	AuthorID      int64             `json:"-"`
	Content       string            `json:"content"`
	Image         string            `json:"image"`
	WallOwnerID   *int64            `json:"wall_owner_id"`
	TaggedUserIDs []int64           `json:"tagged_user_ids"`
	Privacy       models.Privacy    `json:"privacy"`
	PhotoTags     []models.PhotoTag `json:"photo_tags"`
}

// CreatePost stores a post with its tags. The wall owner and every tagged
// user other than the author get a notification; photo tags are silent.
func (p *Processor) CreatePost(ctx context.Context, in NewPost) (out Outcome[models.Post], err error) {
	defer func() { p.done("create_post", out.Applied, err) }()

	post, err := p.validatePost(in)
	if err != nil {
		return out, err
	}

	var deliveries []models.Delivery
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		author, err := tx.UserByID(ctx, post.AuthorID)
		if err != nil {
			return err
		}
		referenced := append([]int64(nil), post.TaggedUserIDs...)
		if post.WallOwnerID != nil {
			referenced = append(referenced, *post.WallOwnerID)
		}
		for _, t := range post.PhotoTags {
			referenced = append(referenced, t.UserID)
		}
		if err := tx.UsersExist(ctx, referenced); err != nil {
			return err
		}

		if err := tx.InsertPost(ctx, &post); err != nil {
			return err
		}
		if err := tx.InsertPostTags(ctx, post.ID, post.TaggedUserIDs); err != nil {
			return err
		}
		for i := range post.PhotoTags {
			post.PhotoTags[i].PostID = post.ID
			if err := tx.InsertPhotoTag(ctx, post.PhotoTags[i]); err != nil {
				return err
			}
		}

		if w := post.WallOwnerID; w != nil && *w != post.AuthorID {
			kind := models.WallPostKind{PostID: post.ID, AuthorID: post.AuthorID}
			if err := notify(ctx, tx, *w, kind, author.Name(), &deliveries); err != nil {
				return err
			}
		}
		for _, uid := range post.TaggedUserIDs {
			if uid == post.AuthorID {
				continue
			}
			kind := models.TagKind{PostID: post.ID, TaggerID: post.AuthorID}
			if err := notify(ctx, tx, uid, kind, author.Name(), &deliveries); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Outcome[models.Post]{}, err
	}
	return applied(post, deliveries), nil
}

func (p *Processor) validatePost(in NewPost) (models.Post, error) {
	if err := validateID("author", in.AuthorID); err != nil {
		return models.Post{}, err
	}
	post := models.Post{
		AuthorID:    in.AuthorID,
		WallOwnerID: in.WallOwnerID,
		Image:       in.Image,
		Privacy:     in.Privacy,
	}
	if post.Privacy == "" {
		post.Privacy = models.PrivacyPublic
	}
	if !post.Privacy.Valid() {
		return models.Post{}, invalid("unknown privacy %q", in.Privacy)
	}

	// an image alone is a valid post
	if strings.TrimSpace(in.Content) != "" || in.Image == "" {
		content, err := text("content", in.Content, maxContentLen)
		if err != nil {
			return models.Post{}, err
		}
		post.Content = content
	}

	if post.WallOwnerID != nil {
		if err := validateID("wall owner", *post.WallOwnerID); err != nil {
			return models.Post{}, err
		}
	}

	seen := make(map[int64]bool, len(in.TaggedUserIDs))
	post.TaggedUserIDs = []int64{}
	for _, uid := range in.TaggedUserIDs {
		if err := validateID("tagged user", uid); err != nil {
			return models.Post{}, err
		}
		if !seen[uid] {
			seen[uid] = true
			post.TaggedUserIDs = append(post.TaggedUserIDs, uid)
		}
	}

	if len(in.PhotoTags) > 0 && in.Image == "" {
		return models.Post{}, invalid("photo tags need an image")
	}
	for _, t := range in.PhotoTags {
		if err := validateID("photo tag user", t.UserID); err != nil {
			return models.Post{}, err
		}
		if t.X < 0 || t.X > 1 || t.Y < 0 || t.Y > 1 {
			return models.Post{}, invalid("photo tag position must be within the image")
		}
		post.PhotoTags = append(post.PhotoTags, models.PhotoTag{UserID: t.UserID, X: t.X, Y: t.Y})
	}
	return post, nil
}

// AddComment stores a comment and notifies the post author unless they
// wrote it.
func (p *Processor) AddComment(ctx context.Context, postID, userID int64, content string) (out Outcome[models.Comment], err error) {
	defer func() { p.done("add_comment", out.Applied, err) }()
	if err := validateID("post", postID); err != nil {
		return out, err
	}
	if err := validateID("user", userID); err != nil {
		return out, err
	}
	content, err = text("comment", content, maxContentLen)
	if err != nil {
		return out, err
	}

	comment := models.Comment{PostID: postID, AuthorID: userID, Content: content}
	var deliveries []models.Delivery
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		post, err := tx.PostByID(ctx, postID)
		if err != nil {
			return err
		}
		commenter, err := tx.UserByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := tx.InsertComment(ctx, &comment); err != nil {
			return err
		}
		comment.AuthorUsername = commenter.Username

		if post.AuthorID != userID {
			kind := models.CommentKind{PostID: postID, CommenterID: userID}
			return notify(ctx, tx, post.AuthorID, kind, commenter.Name(), &deliveries)
		}
		return nil
	})
	if err != nil {
		return Outcome[models.Comment]{}, err
	}
	return applied(comment, deliveries), nil
}
