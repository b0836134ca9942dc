package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"socialhub/backend/models"
)

// RegisterFunc creates one account. Seeding goes through it so test users
// get the same notifications and invite codes as real sign-ups.
type RegisterFunc func(ctx context.Context, data models.RegistrationData) error

// InsertTestUsers registers user_a .. user_k. Users that already exist are
// skipped.
func InsertTestUsers(ctx context.Context, register RegisterFunc, log zerolog.Logger) error {
	created := 0
	for _, u := range generateUsersAtoK() {
		err := register(ctx, u)
		switch {
		case err == nil:
			created++
		case errors.Is(err, models.ErrConflict):
			continue
		default:
			return fmt.Errorf("seed %s: %w", u.Username, err)
		}
	}
	log.Info().Int("created", created).Msg("test users seeded")
	return nil
}

func generateUsersAtoK() []models.RegistrationData {
	var users []models.RegistrationData
	for r := 'a'; r <= 'k'; r++ {
		u := string(r)
		users = append(users, models.RegistrationData{
			Username:    "user_" + u,
			Password:    "password_" + u,
			Email:       fmt.Sprintf("%s@example.test", u),
			DisplayName: fmt.Sprintf("User %s", strings.ToUpper(u)),
		})
	}
	return users
}
