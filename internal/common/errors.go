// Package common defines shared sentinel errors used across the Prattle
// server layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// ErrStorage wraps any underlying persistence failure. Repositories
	// return it wrapped around the driver error so that callers can match
	// the kind without inspecting driver details.
	ErrStorage = errors.New("storage error")

	// Login state machine results.
	ErrLockedOut     = errors.New("locked out")
	ErrBadCredential = errors.New("bad credential")

	// ErrInvalidState marks an operation that is valid in general but not
	// for the entity's current state, e.g. demoting a user who is not a mod.
	ErrInvalidState = errors.New("invalid state")
)
