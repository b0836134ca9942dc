package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"socialhub/backend/models"
)

// InsertNotification records one unread notification for userID.
func (tx *Tx) InsertNotification(ctx context.Context, userID int64, kind models.NotificationKind, content string) (models.Notification, error) {
	n := models.Notification{
		UserID:       userID,
		Type:         kind.Type(),
		Content:      content,
		RelatedID:    kind.RelatedID(),
		SourceUserID: kind.SourceUserID(),
		CreatedAt:    tx.Now(),
		Kind:         kind,
	}
	id, err := tx.insert(ctx, `INSERT INTO notifications
		(user_id, type, content, related_id, source_user_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, FALSE, ?)`,
		n.UserID, string(n.Type), n.Content, nullable(n.RelatedID), nullable(n.SourceUserID), n.CreatedAt)
	if err != nil {
		return models.Notification{}, fmt.Errorf("insert %s notification for %d: %w", n.Type, userID, err)
	}
	n.ID = id
	return n, nil
}

// MarkNotificationRead is a no-op for an already read notification. A
// notification owned by another user is ErrNotFound.
func (tx *Tx) MarkNotificationRead(ctx context.Context, userID, notificationID int64) error {
	n, err := tx.affected(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = ? AND user_id = ?`,
		notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification %d read: %w", notificationID, err)
	}
	if n == 0 {
		return fmt.Errorf("notification %d: %w", notificationID, models.ErrNotFound)
	}
	return nil
}

func (tx *Tx) MarkAllNotificationsRead(ctx context.Context, userID int64) (int64, error) {
	n, err := tx.affected(ctx, `UPDATE notifications SET is_read = TRUE WHERE user_id = ? AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read for %d: %w", userID, err)
	}
	return n, nil
}

// Notifications lists user's notifications, newest first.
func (c conn) Notifications(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	rows, err := c.query(ctx, `SELECT id, user_id, type, content, related_id, source_user_id, is_read, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	out := []models.Notification{}
	for rows.Next() {
		var (
			n               models.Notification
			typ             string
			related, source sql.NullInt64
		)
		if err := rows.Scan(&n.ID, &n.UserID, &typ, &n.Content, &related, &source, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = models.NotificationType(typ)
		n.RelatedID = ptr(related)
		n.SourceUserID = ptr(source)
		if n.Kind, err = models.DecodeKind(n.Type, n.RelatedID, n.SourceUserID); err != nil {
			return nil, fmt.Errorf("notification %d: %w", n.ID, err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount is the live number of unread notifications for user.
func (c conn) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := c.queryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE`, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", translate(err))
	}
	return n, nil
}

// UnreadCounts gathers every unread badge for user in one read.
func (c conn) UnreadCounts(ctx context.Context, userID int64) (models.UnreadCounts, error) {
	var u models.UnreadCounts
	err := c.queryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = FALSE),
		(SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = FALSE),
		(SELECT COUNT(*) FROM pokes WHERE poked_id = ? AND is_read = FALSE)`,
		userID, userID, userID).Scan(&u.Notifications, &u.Messages, &u.Pokes)
	if err != nil {
		return u, fmt.Errorf("count unread for %d: %w", userID, translate(err))
	}
	return u, nil
}
