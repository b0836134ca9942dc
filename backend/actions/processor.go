// Package actions applies user actions to the ledger. Each operation runs in
// one transaction and returns an Outcome only after commit; the caller
// publishes the Outcome's deliveries.
package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"socialhub/backend/ledger"
	"socialhub/backend/metrics"
	"socialhub/backend/models"
)

const (
	DefaultPokeCooldown = time.Hour
	ReasonThrottled     = "throttled"
)

// TxRunner is the part of the ledger the processor uses: transactions for
// writes, plus the login lookup, which reads outside any transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *ledger.Tx) error) error
	UserByLogin(ctx context.Context, login string) (models.User, error)
}

// Outcome is the committed result of an action. Deliveries are addressed to
// rooms and are safe to publish: every row they mention is durable.
type Outcome[T any] struct {
	Applied    bool
	Reason     string
	Payload    T
	Deliveries []models.Delivery
}

type Processor struct {
	ledger   TxRunner
	log      zerolog.Logger
	cooldown time.Duration
	newCode  func() string
}

type Option func(*Processor)

func WithPokeCooldown(d time.Duration) Option {
	return func(p *Processor) { p.cooldown = d }
}

// WithCodeGenerator replaces the invite code generator.
func WithCodeGenerator(gen func() string) Option {
	return func(p *Processor) { p.newCode = gen }
}

func New(l TxRunner, log zerolog.Logger, opts ...Option) *Processor {
	p := &Processor{
		ledger:   l,
		log:      log.With().Str("component", "actions").Logger(),
		cooldown: DefaultPokeCooldown,
		newCode:  newInviteCode,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func newInviteCode() string {
	return uuid.NewString()
}

func applied[T any](payload T, deliveries []models.Delivery) Outcome[T] {
	return Outcome[T]{Applied: true, Payload: payload, Deliveries: deliveries}
}

// done records the action in metrics and logs failures that are not the
// caller's fault.
func (p *Processor) done(action string, applied bool, err error) {
	switch {
	case err != nil:
		metrics.Action(action, "error")
		if !isClientError(err) {
			p.log.Error().Err(err).Str("action", action).Msg("action failed")
		}
	case applied:
		metrics.Action(action, "applied")
	default:
		metrics.Action(action, ReasonThrottled)
	}
}

func isClientError(err error) bool {
	return errors.Is(err, models.ErrValidation) ||
		errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrConflict) ||
		errors.Is(err, models.ErrUnauthenticated)
}

// notify stores a notification for target and queues its live delivery.
func notify(ctx context.Context, tx *ledger.Tx, target int64, kind models.NotificationKind, actor string, out *[]models.Delivery) error {
	n, err := tx.InsertNotification(ctx, target, kind, describe(kind, actor))
	if err != nil {
		return err
	}
	unread, err := tx.UnreadCount(ctx, target)
	if err != nil {
		return err
	}
	*out = append(*out, models.Delivery{
		Room:    models.UserRoom(target),
		Event:   eventFor(kind),
		Payload: models.NotificationEvent{Notification: n, UnreadCount: unread},
	})
	return nil
}

// unreadDelivery re-counts user's badges inside tx.
func unreadDelivery(ctx context.Context, tx *ledger.Tx, userID int64) (models.Delivery, error) {
	counts, err := tx.UnreadCounts(ctx, userID)
	if err != nil {
		return models.Delivery{}, err
	}
	return models.Delivery{Room: models.UserRoom(userID), Event: models.EventUnreadCount, Payload: counts}, nil
}

func eventFor(kind models.NotificationKind) string {
	if _, ok := kind.(models.PokeKind); ok {
		return models.EventNewPoke
	}
	return models.EventNewNotification
}

func describe(kind models.NotificationKind, actor string) string {
	switch kind.(type) {
	case models.LikeKind:
		return fmt.Sprintf("%s liked your post", actor)
	case models.CommentKind:
		return fmt.Sprintf("%s commented on your post", actor)
	case models.WallPostKind:
		return fmt.Sprintf("%s wrote on your wall", actor)
	case models.TagKind:
		return fmt.Sprintf("%s tagged you in a post", actor)
	case models.PokeKind:
		return fmt.Sprintf("%s poked you", actor)
	case models.InviteAcceptedKind:
		return fmt.Sprintf("%s joined with your invite. Premium unlocked!", actor)
	case models.WelcomeKind:
		return "Welcome to socialhub! Invite friends to unlock premium."
	}
	return ""
}
