package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"socialhub/backend/models"
)

func (tx *Tx) InsertMessage(ctx context.Context, m *models.Message) error {
	m.CreatedAt = tx.Now()
	m.Read = false
	id, err := tx.insert(ctx, `INSERT INTO messages (sender_id, receiver_id, content, is_read, created_at)
		VALUES (?, ?, ?, FALSE, ?)`, m.SenderID, m.ReceiverID, m.Content, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message %d->%d: %w", m.SenderID, m.ReceiverID, err)
	}
	m.ID = id
	return nil
}

// MarkConversationRead marks every message from other to reader as read.
func (tx *Tx) MarkConversationRead(ctx context.Context, readerID, otherID int64) (int64, error) {
	n, err := tx.affected(ctx, `UPDATE messages SET is_read = TRUE
		WHERE receiver_id = ? AND sender_id = ? AND is_read = FALSE`, readerID, otherID)
	if err != nil {
		return 0, fmt.Errorf("mark conversation %d<-%d read: %w", readerID, otherID, err)
	}
	return n, nil
}

// Conversation returns the newest limit messages between a and b, oldest
// first. Argument order does not matter.
func (c conn) Conversation(ctx context.Context, a, b int64, limit int) ([]models.Message, error) {
	rows, err := c.query(ctx, `SELECT m.id, m.sender_id, m.receiver_id, u.username, m.content, m.is_read, m.created_at
		FROM messages m JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = ? AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = ?)
		ORDER BY m.created_at DESC, m.id DESC LIMIT ?`, a, b, b, a, limit)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.SenderUsername, &m.Content, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.Reverse(out)
	return out, nil
}

// Contacts lists every other user with the unread count of messages they
// sent viewer and the time of the last message between them, most recent
// conversation first.
func (c conn) Contacts(ctx context.Context, viewerID int64) ([]models.Contact, error) {
	rows, err := c.query(ctx, `SELECT x.id, x.username, x.display_name, x.avatar, x.unread, x.last_id, lm.created_at
		FROM (SELECT u.id, u.username, u.display_name, u.avatar,
			(SELECT COUNT(*) FROM messages m WHERE m.sender_id = u.id AND m.receiver_id = ? AND m.is_read = FALSE) AS unread,
			(SELECT MAX(m.id) FROM messages m
				WHERE (m.sender_id = u.id AND m.receiver_id = ?) OR (m.sender_id = ? AND m.receiver_id = u.id)) AS last_id
			FROM users u WHERE u.id <> ?) x
		LEFT JOIN messages lm ON lm.id = x.last_id
		ORDER BY x.last_id DESC NULLS LAST, x.username`, viewerID, viewerID, viewerID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	out := []models.Contact{}
	for rows.Next() {
		var (
			ct     models.Contact
			last   sql.NullInt64
			lastAt sql.NullTime
		)
		if err := rows.Scan(&ct.UserID, &ct.Username, &ct.DisplayName, &ct.Avatar, &ct.UnreadMessages, &last, &lastAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		ct.LastMessageID = ptr(last)
		if lastAt.Valid {
			t := lastAt.Time.UTC()
			ct.LastMessageAt = &t
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}
