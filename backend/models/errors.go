package models

import "errors"

// Errors shared by the ledger, the action processor and the transport.
// Callers match them with errors.Is; they are usually wrapped with detail.
var (
	ErrValidation      = errors.New("validation error")
	ErrConflict        = errors.New("already exists")
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
)
