package actions

import (
	"context"

	"socialhub/backend/ledger"
	"socialhub/backend/models"
)

// MarkNotificationRead only lets the target mark a notification; anyone
// else gets ErrNotFound.
func (p *Processor) MarkNotificationRead(ctx context.Context, userID, notificationID int64) (out Outcome[int64], err error) {
	defer func() { p.done("mark_notification_read", out.Applied, err) }()
	if err := validateID("user", userID); err != nil {
		return out, err
	}
	if err := validateID("notification", notificationID); err != nil {
		return out, err
	}

	var badge models.Delivery
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) (err error) {
		if err = tx.MarkNotificationRead(ctx, userID, notificationID); err != nil {
			return err
		}
		badge, err = unreadDelivery(ctx, tx, userID)
		return err
	})
	if err != nil {
		return Outcome[int64]{}, err
	}
	return applied(notificationID, []models.Delivery{badge}), nil
}

func (p *Processor) MarkAllNotificationsRead(ctx context.Context, userID int64) (out Outcome[int64], err error) {
	defer func() { p.done("mark_all_notifications_read", out.Applied, err) }()
	if err := validateID("user", userID); err != nil {
		return out, err
	}

	var (
		marked int64
		badge  models.Delivery
	)
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) (err error) {
		if marked, err = tx.MarkAllNotificationsRead(ctx, userID); err != nil {
			return err
		}
		badge, err = unreadDelivery(ctx, tx, userID)
		return err
	})
	if err != nil {
		return Outcome[int64]{}, err
	}
	return applied(marked, []models.Delivery{badge}), nil
}
