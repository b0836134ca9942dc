package models

import "time"

type Privacy string

const (
	PrivacyPublic  Privacy = "public"
	PrivacyFriends Privacy = "friends"
	PrivacyPrivate Privacy = "private"
)

func (p Privacy) Valid() bool {
	switch p {
	case PrivacyPublic, PrivacyFriends, PrivacyPrivate:
		return true
	}
	return false
}

type Post struct {
	ID            int64      `json:"id"`
	AuthorID      int64      `json:"author_id"`
	WallOwnerID   *int64     `json:"wall_owner_id,omitempty"`
	Content       string     `json:"content"`
	Image         string     `json:"image,omitempty"`
	TaggedUserIDs []int64    `json:"tagged_user_ids"`
	PhotoTags     []PhotoTag `json:"photo_tags,omitempty"`
	Privacy       Privacy    `json:"privacy"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PhotoTag marks a user at a position inside a post's image. X and Y are
// fractions of the image size.
type PhotoTag struct {
	PostID int64   `json:"post_id"`
	UserID int64   `json:"user_id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type Comment struct {
	ID             int64     `json:"id"`
	PostID         int64     `json:"post_id"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// FeedPost is a post annotated for one viewer. Counts are computed when the
// row is read.
type FeedPost struct {
	Post
	AuthorUsername    string `json:"author_username"`
	AuthorDisplayName string `json:"author_display_name"`
	WallOwnerUsername string `json:"wall_owner_username,omitempty"`
	LikesCount        int64  `json:"likes_count"`
	CommentsCount     int64  `json:"comments_count"`
	ViewerHasLiked    bool   `json:"viewer_has_liked"`
}
