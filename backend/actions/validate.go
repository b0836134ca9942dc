package actions

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"socialhub/backend/models"
)

const (
	maxContentLen = 5000
	maxMessageLen = 2000
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

func validateUsername(username string) error {
	switch {
	case username == "":
		return invalid("username is required")
	case len(username) < 2:
		return invalid("username must be at least 2 characters")
	case len(username) > 20:
		return invalid("username must be less than 20 characters")
	case !usernameRe.MatchString(username):
		return invalid("username can only contain letters, numbers, and underscores")
	}
	return nil
}

func validateEmail(email string) error {
	switch {
	case email == "":
		return invalid("email is required")
	case len(email) > 255:
		return invalid("email must be less than 255 characters")
	case !emailRe.MatchString(email):
		return invalid("invalid email address format")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return invalid("password must be at least 6 characters")
	}
	if len(password) > 72 {
		return invalid("password must be at most 72 bytes")
	}
	return nil
}

func validateID(name string, id int64) error {
	if id <= 0 {
		return invalid("%s must be a positive id", name)
	}
	return nil
}

// text trims s and checks it is non-empty and at most max runes.
func text(name, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("%s is required", name)
	}
	if utf8.RuneCountInString(s) > max {
		return "", invalid("%s must be at most %d characters", name, max)
	}
	return s, nil
}
