package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"socialhub/backend/models"
)

// InsertPost stores the post row only; tags are written separately.
func (tx *Tx) InsertPost(ctx context.Context, p *models.Post) error {
	if p.Privacy == "" {
		p.Privacy = models.PrivacyPublic
	}
	var image any
	if p.Image != "" {
		image = p.Image
	}
	p.CreatedAt = tx.Now()
	id, err := tx.insert(ctx, `INSERT INTO posts (author_id, wall_owner_id, content, image, privacy, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.AuthorID, nullable(p.WallOwnerID), p.Content, image, string(p.Privacy), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	p.ID = id
	return nil
}

func (c conn) PostByID(ctx context.Context, id int64) (models.Post, error) {
	var (
		p       models.Post
		wall    sql.NullInt64
		image   sql.NullString
		privacy string
	)
	err := c.queryRow(ctx, `SELECT id, author_id, wall_owner_id, content, image, privacy, created_at
		FROM posts WHERE id = ?`, id).
		Scan(&p.ID, &p.AuthorID, &wall, &p.Content, &image, &privacy, &p.CreatedAt)
	if err != nil {
		return models.Post{}, fmt.Errorf("post %d: %w", id, translate(err))
	}
	p.WallOwnerID = ptr(wall)
	p.Image = image.String
	p.Privacy = models.Privacy(privacy)

	tags, err := c.taggedUsers(ctx, []int64{id})
	if err != nil {
		return models.Post{}, err
	}
	p.TaggedUserIDs = nonNil(tags[id])
	return p, nil
}

// InsertPostTags records the users mentioned by a post. Duplicates in
// userIDs must already be removed.
func (tx *Tx) InsertPostTags(ctx context.Context, postID int64, userIDs []int64) error {
	for _, uid := range userIDs {
		if _, err := tx.exec(ctx, `INSERT INTO post_tags (post_id, user_id) VALUES (?, ?)`, postID, uid); err != nil {
			return fmt.Errorf("tag user %d on post %d: %w", uid, postID, err)
		}
	}
	return nil
}

func (tx *Tx) InsertPhotoTag(ctx context.Context, tag models.PhotoTag) error {
	_, err := tx.insert(ctx, `INSERT INTO photo_tags (post_id, user_id, x, y) VALUES (?, ?, ?, ?)`,
		tag.PostID, tag.UserID, tag.X, tag.Y)
	if err != nil {
		return fmt.Errorf("photo tag user %d on post %d: %w", tag.UserID, tag.PostID, err)
	}
	return nil
}

func (c conn) PhotoTags(ctx context.Context, postID int64) ([]models.PhotoTag, error) {
	byPost, err := c.photoTags(ctx, []int64{postID})
	if err != nil {
		return nil, err
	}
	return byPost[postID], nil
}

func (c conn) taggedUsers(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	out := make(map[int64][]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	rows, err := c.query(ctx, `SELECT post_id, user_id FROM post_tags
		WHERE post_id IN (`+placeholders(len(postIDs))+`) ORDER BY post_id, user_id`, int64Args(postIDs)...)
	if err != nil {
		return nil, fmt.Errorf("load post tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID, userID int64
		if err := rows.Scan(&postID, &userID); err != nil {
			return nil, fmt.Errorf("scan post tag: %w", err)
		}
		out[postID] = append(out[postID], userID)
	}
	return out, rows.Err()
}

func (c conn) photoTags(ctx context.Context, postIDs []int64) (map[int64][]models.PhotoTag, error) {
	out := make(map[int64][]models.PhotoTag, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	rows, err := c.query(ctx, `SELECT post_id, user_id, x, y FROM photo_tags
		WHERE post_id IN (`+placeholders(len(postIDs))+`) ORDER BY id`, int64Args(postIDs)...)
	if err != nil {
		return nil, fmt.Errorf("load photo tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t models.PhotoTag
		if err := rows.Scan(&t.PostID, &t.UserID, &t.X, &t.Y); err != nil {
			return nil, fmt.Errorf("scan photo tag: %w", err)
		}
		out[t.PostID] = append(out[t.PostID], t)
	}
	return out, rows.Err()
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
