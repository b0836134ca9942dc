package ledger

import (
	"context"
	"fmt"
	"time"

	"socialhub/backend/models"
)

func (tx *Tx) InsertPoke(ctx context.Context, p *models.Poke) error {
	p.CreatedAt = tx.Now()
	p.Read = false
	id, err := tx.insert(ctx, `INSERT INTO pokes (poker_id, poked_id, is_read, created_at) VALUES (?, ?, FALSE, ?)`,
		p.PokerID, p.PokedID, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert poke %d->%d: %w", p.PokerID, p.PokedID, err)
	}
	p.ID = id
	return nil
}

// RecentPokeExists reports whether poker poked poked strictly after since.
func (c conn) RecentPokeExists(ctx context.Context, pokerID, pokedID int64, since time.Time) (bool, error) {
	var exists bool
	err := c.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM pokes
		WHERE poker_id = ? AND poked_id = ? AND created_at > ?)`, pokerID, pokedID, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check poke cooldown: %w", translate(err))
	}
	return exists, nil
}

func (tx *Tx) MarkPokesRead(ctx context.Context, userID int64) (int64, error) {
	n, err := tx.affected(ctx, `UPDATE pokes SET is_read = TRUE WHERE poked_id = ? AND is_read = FALSE`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark pokes read for %d: %w", userID, err)
	}
	return n, nil
}

// Pokes lists pokes received by user, newest first.
func (c conn) Pokes(ctx context.Context, userID int64, limit int) ([]models.ReceivedPoke, error) {
	rows, err := c.query(ctx, `SELECT p.id, p.poker_id, p.poked_id, p.is_read, p.created_at, u.username
		FROM pokes p JOIN users u ON u.id = p.poker_id
		WHERE p.poked_id = ? ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query pokes: %w", err)
	}
	defer rows.Close()

	out := []models.ReceivedPoke{}
	for rows.Next() {
		var p models.ReceivedPoke
		if err := rows.Scan(&p.ID, &p.PokerID, &p.PokedID, &p.Read, &p.CreatedAt, &p.PokerUsername); err != nil {
			return nil, fmt.Errorf("scan poke: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
