package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"socialhub/backend/models"
)

const userColumns = `id, username, email, password_hash, display_name, bio, avatar,
	poke_count, invite_code, invited_by, premium, created_at`

func scanUser(row interface{ Scan(...any) error }) (models.User, error) {
	var (
		u         models.User
		invitedBy sql.NullInt64
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.DisplayName, &u.Bio,
		&u.Avatar, &u.PokeCount, &u.InviteCode, &invitedBy, &u.Premium, &u.CreatedAt)
	if err != nil {
		return models.User{}, translate(err)
	}
	u.InvitedBy = ptr(invitedBy)
	return u, nil
}

// InsertUser stores u and fills in its id and creation time. A taken
// username, email or invite code is ErrConflict.
func (tx *Tx) InsertUser(ctx context.Context, u *models.User) error {
	u.CreatedAt = tx.Now()
	id, err := tx.insert(ctx, `INSERT INTO users
		(username, email, password_hash, display_name, bio, avatar, poke_count, invite_code, invited_by, premium, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.DisplayName, u.Bio, u.Avatar,
		u.InviteCode, nullable(u.InvitedBy), u.Premium, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	u.ID = id
	u.PokeCount = 0
	return nil
}

func (c conn) UserByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(c.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return u, fmt.Errorf("user %d: %w", id, err)
	}
	return u, nil
}

func (c conn) UserByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(c.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err != nil {
		return u, fmt.Errorf("user %q: %w", username, err)
	}
	return u, nil
}

// UserByLogin matches either the username or the email.
func (c conn) UserByLogin(ctx context.Context, login string) (models.User, error) {
	u, err := scanUser(c.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ? OR email = ?`, login, login))
	if err != nil {
		return u, fmt.Errorf("user %q: %w", login, err)
	}
	return u, nil
}

// UserByInviteCode finds the owner of a personal invite code.
func (c conn) UserByInviteCode(ctx context.Context, code string) (models.User, error) {
	u, err := scanUser(c.queryRow(ctx, `SELECT `+userColumns+` FROM users WHERE invite_code = ?`, code))
	if err != nil {
		return u, fmt.Errorf("user with invite code %q: %w", code, err)
	}
	return u, nil
}

func (c conn) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := c.queryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", translate(err))
	}
	return n, nil
}

// UsersExist reports ErrNotFound naming the first id with no user row.
func (c conn) UsersExist(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		var one int
		err := c.queryRow(ctx, `SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
		if err != nil {
			return fmt.Errorf("user %d: %w", id, translate(err))
		}
	}
	return nil
}

func (tx *Tx) GrantPremium(ctx context.Context, userID int64) error {
	n, err := tx.affected(ctx, `UPDATE users SET premium = TRUE WHERE id = ?`, userID)
	if err != nil {
		return fmt.Errorf("grant premium %d: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("grant premium %d: %w", userID, models.ErrNotFound)
	}
	return nil
}

func (tx *Tx) SetInvitedBy(ctx context.Context, userID, inviterID int64) error {
	n, err := tx.affected(ctx, `UPDATE users SET invited_by = ? WHERE id = ?`, inviterID, userID)
	if err != nil {
		return fmt.Errorf("set inviter of %d: %w", userID, err)
	}
	if n == 0 {
		return fmt.Errorf("set inviter of %d: %w", userID, models.ErrNotFound)
	}
	return nil
}

// IncrementPokeCount bumps the counter and returns its new value.
func (tx *Tx) IncrementPokeCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := tx.queryRow(ctx,
		`UPDATE users SET poke_count = poke_count + 1 WHERE id = ? RETURNING poke_count`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment poke count %d: %w", userID, translate(err))
	}
	return count, nil
}

// LockUser holds the user's row until the transaction ends. On sqlite the
// immediate write transaction already excludes other writers.
func (tx *Tx) LockUser(ctx context.Context, userID int64) error {
	q := `SELECT id FROM users WHERE id = ?`
	if tx.dialect == DriverPostgres {
		q += ` FOR UPDATE`
	}
	var id int64
	if err := tx.queryRow(ctx, q, userID).Scan(&id); err != nil {
		return fmt.Errorf("lock user %d: %w", userID, translate(err))
	}
	return nil
}

// Profile is the user as seen by viewer, with their authored post count.
func (c conn) Profile(ctx context.Context, viewerID, userID int64) (models.Profile, error) {
	u, err := c.UserByID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	p := models.Profile{User: u, IsSelf: viewerID == userID}
	if err := c.queryRow(ctx, `SELECT COUNT(*) FROM posts WHERE author_id = ?`, userID).Scan(&p.PostCount); err != nil {
		return models.Profile{}, fmt.Errorf("count posts of %d: %w", userID, translate(err))
	}
	if !p.IsSelf {
		p.InviteCode = ""
	}
	return p, nil
}
