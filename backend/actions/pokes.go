package actions

import (
	"context"

	"socialhub/backend/ledger"
	"socialhub/backend/models"
)

type PokeResult struct {
	PokeID    int64 `json:"poke_id"`
	PokeCount int64 `json:"poke_count"`
}

// SendPoke pokes pokedID unless pokerID already did so within the cooldown,
// measured on the ledger clock. A throttled poke is not an error: the
// Outcome is not applied and carries ReasonThrottled.
func (p *Processor) SendPoke(ctx context.Context, pokerID, pokedID int64) (out Outcome[PokeResult], err error) {
	defer func() { p.done("send_poke", out.Applied, err) }()
	if err := validateID("poker", pokerID); err != nil {
		return out, err
	}
	if err := validateID("poked user", pokedID); err != nil {
		return out, err
	}
	if pokerID == pokedID {
		return out, invalid("you cannot poke yourself")
	}

	var (
		res        PokeResult
		throttled  bool
		deliveries []models.Delivery
	)
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		// serializes pokes at the same user so two cannot both pass the check
		if err := tx.LockUser(ctx, pokedID); err != nil {
			return err
		}
		poker, err := tx.UserByID(ctx, pokerID)
		if err != nil {
			return err
		}

		since := tx.Now().Add(-p.cooldown)
		if throttled, err = tx.RecentPokeExists(ctx, pokerID, pokedID, since); err != nil || throttled {
			return err
		}

		poke := models.Poke{PokerID: pokerID, PokedID: pokedID}
		if err := tx.InsertPoke(ctx, &poke); err != nil {
			return err
		}
		res.PokeID = poke.ID
		if res.PokeCount, err = tx.IncrementPokeCount(ctx, pokedID); err != nil {
			return err
		}
		kind := models.PokeKind{PokeID: poke.ID, PokerID: pokerID}
		return notify(ctx, tx, pokedID, kind, poker.Name(), &deliveries)
	})
	switch {
	case err != nil:
		return Outcome[PokeResult]{}, err
	case throttled:
		return Outcome[PokeResult]{Reason: ReasonThrottled}, nil
	}
	return applied(res, deliveries), nil
}

// MarkPokesRead clears the user's poke badge.
func (p *Processor) MarkPokesRead(ctx context.Context, userID int64) (out Outcome[int64], err error) {
	defer func() { p.done("mark_pokes_read", out.Applied, err) }()
	if err := validateID("user", userID); err != nil {
		return out, err
	}

	var (
		marked int64
		badge  models.Delivery
	)
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) (err error) {
		if marked, err = tx.MarkPokesRead(ctx, userID); err != nil {
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
