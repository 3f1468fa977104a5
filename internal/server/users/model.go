// Package users implements the account directory: lookup, registration,
// profile updates, soft deactivation and the login attempt/lockout state
// machine.
package users

import "time"

// User is an account record. Accounts are never hard-deleted through the
// service layer; Active false means the account is considered removed.
type User struct {
	Username      string     `json:"username"`
	Password      string     `json:"password,omitempty"`
	Email         string     `json:"email,omitempty"`
	FirstName     string     `json:"firstName,omitempty"`
	LastName      string     `json:"lastName,omitempty"`
	Bio           string     `json:"bio,omitempty"`
	Avatar        int        `json:"avatar"`
	Active        bool       `json:"active"`
	LoginAttempts int        `json:"-"`
	Lockout       *time.Time `json:"-"`
}
