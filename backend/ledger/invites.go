package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"socialhub/backend/models"
)

func (tx *Tx) InsertInvite(ctx context.Context, inv *models.Invite) error {
	inv.CreatedAt = tx.Now()
	inv.Status = models.InvitePending
	inv.BonusUnlocked = false
	inv.AcceptedBy = nil
	id, err := tx.insert(ctx, `INSERT INTO invites (inviter_id, contact, code, status, bonus_unlocked, created_at)
		VALUES (?, ?, ?, ?, FALSE, ?)`,
		inv.InviterID, inv.Contact, inv.Code, string(inv.Status), inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert invite: %w", err)
	}
	inv.ID = id
	return nil
}

func (c conn) InviteByCode(ctx context.Context, code string) (models.Invite, error) {
	var (
		inv        models.Invite
		status     string
		acceptedBy sql.NullInt64
	)
	err := c.queryRow(ctx, `SELECT id, inviter_id, contact, code, status, bonus_unlocked, accepted_by, created_at
		FROM invites WHERE code = ?`, code).
		Scan(&inv.ID, &inv.InviterID, &inv.Contact, &inv.Code, &status, &inv.BonusUnlocked, &acceptedBy, &inv.CreatedAt)
	if err != nil {
		return models.Invite{}, fmt.Errorf("invite %q: %w", code, translate(err))
	}
	inv.Status = models.InviteStatus(status)
	inv.AcceptedBy = ptr(acceptedBy)
	return inv, nil
}

// AcceptInvite moves a pending invite to accepted and unlocks its bonus. It
// reports false when the invite was no longer pending.
func (tx *Tx) AcceptInvite(ctx context.Context, inviteID, userID int64) (bool, error) {
	n, err := tx.affected(ctx, `UPDATE invites SET status = ?, accepted_by = ?, bonus_unlocked = TRUE
		WHERE id = ? AND status = ?`,
		string(models.InviteAccepted), userID, inviteID, string(models.InvitePending))
	if err != nil {
		return false, fmt.Errorf("accept invite %d: %w", inviteID, err)
	}
	return n == 1, nil
}
