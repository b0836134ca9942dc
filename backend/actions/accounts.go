package actions

import (
	"context"
	"errors"
	"strings"

	"socialhub/backend/auth"
	"socialhub/backend/ledger"
	"socialhub/backend/models"
)

// Register creates an account. A pending invite code, or another user's
// personal code, is accepted on the way: the inviter gets premium and a
// notification. Unknown or used codes
// are ignored. Every new user gets a welcome notification.
func (p *Processor) Register(ctx context.Context, data models.RegistrationData) (out Outcome[models.User], err error) {
	defer func() { p.done("register", out.Applied, err) }()

	data.Username = strings.TrimSpace(data.Username)
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))
	data.DisplayName = strings.TrimSpace(data.DisplayName)
	data.InviteCode = strings.TrimSpace(data.InviteCode)
	if err := validateUsername(data.Username); err != nil {
		return out, err
	}
	if err := validateEmail(data.Email); err != nil {
		return out, err
	}
	if err := validatePassword(data.Password); err != nil {
		return out, err
	}
	if len(data.DisplayName) > 50 {
		return out, invalid("display name must be less than 50 characters")
	}

	hash, err := auth.HashPassword(data.Password)
	if err != nil {
		return out, err
	}
	user := models.User{
		Username:     data.Username,
		Email:        data.Email,
		PasswordHash: hash,
		DisplayName:  data.DisplayName,
		InviteCode:   p.newCode(),
	}

	var deliveries []models.Delivery
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		if err := tx.InsertUser(ctx, &user); err != nil {
			return err
		}
		if data.InviteCode != "" {
			if err := p.acceptInvite(ctx, tx, data.InviteCode, &user, &deliveries); err != nil {
				return err
			}
		}
		return notify(ctx, tx, user.ID, models.WelcomeKind{}, user.Name(), &deliveries)
	})
	if err != nil {
		return Outcome[models.User]{}, err
	}
	p.log.Info().Int64("user_id", user.ID).Bool("invited", user.InvitedBy != nil).Msg("user registered")
	return applied(user, deliveries), nil
}

// acceptInvite takes either an issued invite code or a user's personal
// code. A personal code records a fresh invite from its owner.
func (p *Processor) acceptInvite(ctx context.Context, tx *ledger.Tx, code string, user *models.User, out *[]models.Delivery) error {
	inv, err := tx.InviteByCode(ctx, code)
	if errors.Is(err, models.ErrNotFound) {
		inv, err = p.personalInvite(ctx, tx, code, user)
	}
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if inv.Status != models.InvitePending {
		return nil
	}
	ok, err := tx.AcceptInvite(ctx, inv.ID, user.ID)
	if err != nil || !ok {
		return err
	}
	if err := tx.SetInvitedBy(ctx, user.ID, inv.InviterID); err != nil {
		return err
	}
	if err := tx.GrantPremium(ctx, inv.InviterID); err != nil {
		return err
	}
	user.InvitedBy = &inv.InviterID
	kind := models.InviteAcceptedKind{InviteID: inv.ID, NewUserID: user.ID}
	return notify(ctx, tx, inv.InviterID, kind, user.Name(), out)
}

func (p *Processor) personalInvite(ctx context.Context, tx *ledger.Tx, code string, user *models.User) (models.Invite, error) {
	owner, err := tx.UserByInviteCode(ctx, code)
	if err != nil {
		return models.Invite{}, err
	}
	if owner.ID == user.ID {
		return models.Invite{}, models.ErrNotFound
	}
	inv := models.Invite{InviterID: owner.ID, Contact: user.Email, Code: p.newCode()}
	if err := tx.InsertInvite(ctx, &inv); err != nil {
		return models.Invite{}, err
	}
	return inv, nil
}

// Login checks credentials given as username or email. Unknown users and
// wrong passwords both yield ErrUnauthenticated.
func (p *Processor) Login(ctx context.Context, creds models.Credentials) (models.User, error) {
	login := strings.TrimSpace(creds.Username)
	if login == "" || creds.Password == "" {
		return models.User{}, invalid("username and password are required")
	}

	user, err := p.ledger.UserByLogin(ctx, login)
	if errors.Is(err, models.ErrNotFound) {
		return models.User{}, models.ErrUnauthenticated
	}
	if err != nil {
		return models.User{}, err
	}
	if err := auth.CheckPassword(user.PasswordHash, creds.Password); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// CreateInvite issues a fresh invite code for contact.
func (p *Processor) CreateInvite(ctx context.Context, inviterID int64, contact string) (out Outcome[models.Invite], err error) {
	defer func() { p.done("create_invite", out.Applied, err) }()
	if err := validateID("inviter", inviterID); err != nil {
		return out, err
	}
	contact, err = text("contact", contact, 255)
	if err != nil {
		return out, err
	}

	inv := models.Invite{InviterID: inviterID, Contact: contact, Code: p.newCode()}
	err = p.ledger.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		if err := tx.UsersExist(ctx, []int64{inviterID}); err != nil {
			return err
		}
		return tx.InsertInvite(ctx, &inv)
	})
	if err != nil {
		return Outcome[models.Invite]{}, err
	}
	return applied(inv, nil), nil
}
