package ledger

import (
	"context"
	"fmt"

	"socialhub/backend/models"
)

func (tx *Tx) InsertComment(ctx context.Context, c *models.Comment) error {
	c.CreatedAt = tx.Now()
	id, err := tx.insert(ctx, `INSERT INTO comments (post_id, author_id, content, created_at) VALUES (?, ?, ?, ?)`,
		c.PostID, c.AuthorID, c.Content, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment on post %d: %w", c.PostID, err)
	}
	c.ID = id
	return nil
}

// Comments lists a post's comments oldest first.
func (c conn) Comments(ctx context.Context, postID int64) ([]models.Comment, error) {
	rows, err := c.query(ctx, `SELECT c.id, c.post_id, c.author_id, u.username, c.content, c.created_at
		FROM comments c JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ? ORDER BY c.created_at, c.id`, postID)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var cm models.Comment
		if err := rows.Scan(&cm.ID, &cm.PostID, &cm.AuthorID, &cm.AuthorUsername, &cm.Content, &cm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, cm)
	}
	return out, rows.Err()
}

// InsertLike reports false when the pair is already liked.
func (tx *Tx) InsertLike(ctx context.Context, postID, userID int64) (bool, error) {
	n, err := tx.affected(ctx, `INSERT INTO likes (post_id, user_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (post_id, user_id) DO NOTHING`, postID, userID, tx.Now())
	if err != nil {
		return false, fmt.Errorf("like post %d: %w", postID, err)
	}
	return n == 1, nil
}

// DeleteLike reports whether a like row was removed.
func (tx *Tx) DeleteLike(ctx context.Context, postID, userID int64) (bool, error) {
	n, err := tx.affected(ctx, `DELETE FROM likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return false, fmt.Errorf("unlike post %d: %w", postID, err)
	}
	return n > 0, nil
}

func (c conn) CountLikes(ctx context.Context, postID int64) (int64, error) {
	var n int64
	if err := c.queryRow(ctx, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, postID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count likes of %d: %w", postID, translate(err))
	}
	return n, nil
}
