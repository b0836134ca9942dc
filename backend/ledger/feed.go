package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"socialhub/backend/models"
)

const feedSelect = `SELECT p.id, p.author_id, p.wall_owner_id, p.content, p.image, p.privacy, p.created_at,
	a.username, a.display_name, COALESCE(w.username, ''),
	(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
	(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
	EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?)
FROM posts p
JOIN users a ON a.id = p.author_id
LEFT JOIN users w ON w.id = p.wall_owner_id`

// Feed returns every post, newest first, annotated for viewer. Counts are
// computed from the like and comment rows on each call.
func (c conn) Feed(ctx context.Context, viewerID int64, limit int) ([]models.FeedPost, error) {
	return c.feedPosts(ctx, feedSelect+`
		ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, viewerID, limit)
}

// Wall returns posts written on owner's wall plus owner's own timeline posts.
func (c conn) Wall(ctx context.Context, viewerID, ownerID int64, limit int) ([]models.FeedPost, error) {
	return c.feedPosts(ctx, feedSelect+`
		WHERE p.wall_owner_id = ? OR (p.author_id = ? AND p.wall_owner_id IS NULL)
		ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, viewerID, ownerID, ownerID, limit)
}

func (c conn) feedPosts(ctx context.Context, query string, args ...any) ([]models.FeedPost, error) {
	rows, err := c.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	posts := []models.FeedPost{}
	var ids []int64
	for rows.Next() {
		var (
			fp      models.FeedPost
			wall    sql.NullInt64
			image   sql.NullString
			privacy string
		)
		err := rows.Scan(&fp.ID, &fp.AuthorID, &wall, &fp.Content, &image, &privacy, &fp.CreatedAt,
			&fp.AuthorUsername, &fp.AuthorDisplayName, &fp.WallOwnerUsername,
			&fp.LikesCount, &fp.CommentsCount, &fp.ViewerHasLiked)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		fp.WallOwnerID = ptr(wall)
		fp.Image = image.String
		fp.Privacy = models.Privacy(privacy)
		posts = append(posts, fp)
		ids = append(ids, fp.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	rows.Close()

	tags, err := c.taggedUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	photos, err := c.photoTags(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		posts[i].TaggedUserIDs = nonNil(tags[posts[i].ID])
		posts[i].PhotoTags = photos[posts[i].ID]
	}
	return posts, nil
}
