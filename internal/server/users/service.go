package users

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prattle-chat/prattle/internal/common"
	"github.com/prattle-chat/prattle/internal/logging"
)

// maxLoginAttempts is the number of consecutive bad-password attempts that
// are counted before the next one triggers a lockout.
const maxLoginAttempts = 3

// Service provides account directory operations on top of a Repository.
//
// The login sequence (read, mutate attempts/lockout, persist) is serialized
// by loginMu so concurrent attempts for the same account cannot lose
// updates. Contention is low enough that a single mutex is sufficient.
type Service struct {
	repo            Repository
	logger          logging.Logger
	lockoutDuration time.Duration

	loginMu sync.Mutex

	// now is replaceable in tests to drive the lockout clock.
	now func() time.Time
}

func NewService(repo Repository, logger logging.Logger, lockoutDuration time.Duration) *Service {
	return &Service{
		repo:            repo,
		logger:          logger.With("component", "users"),
		lockoutDuration: lockoutDuration,
		now:             time.Now,
	}
}

// Create registers a new account. The account starts active with a clean
// login-attempt counter. Returns common.ErrAlreadyExists when the username
// is taken.
func (s *Service) Create(ctx context.Context, user *User) (*User, error) {
	user.Active = true
	user.LoginAttempts = 0
	user.Lockout = nil

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user %q: %w", user.Username, err)
	}

	s.logger.Info(ctx, "user created", "username", user.Username)
	return created, nil
}

func (s *Service) FindByName(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByName(ctx, username)
}

func (s *Service) ListAll(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListActive(ctx context.Context) ([]User, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	active := make([]User, 0, len(all))
	for _, user := range all {
		if user.Active {
			active = append(active, user)
		}
	}
	return active, nil
}

// SetActive flips the account's active flag. Missing accounts are a silent
// no-op, matching Deactivate semantics.
func (s *Service) SetActive(ctx context.Context, username string, active bool) error {
	user, err := s.repo.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil
		}
		return err
	}

	user.Active = active
	return s.repo.Update(ctx, user)
}

// Deactivate soft-deletes the account. Accounts are never hard-deleted.
func (s *Service) Deactivate(ctx context.Context, username string) error {
	return s.SetActive(ctx, username, false)
}

// ProfileUpdate carries optional profile fields; nil fields are left
// untouched by UpdateProfile.
type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Bio       *string `json:"bio"`
	Avatar    *int    `json:"avatar"`
}

// UpdateProfile applies the non-nil fields of upd to the account. Returns
// common.ErrNotFound when the account does not exist.
func (s *Service) UpdateProfile(ctx context.Context, username string, upd ProfileUpdate) error {
	user, err := s.repo.FindByName(ctx, username)
	if err != nil {
		return err
	}

	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Bio != nil {
		user.Bio = *upd.Bio
	}
	if upd.Avatar != nil {
		user.Avatar = *upd.Avatar
	}

	return s.repo.Update(ctx, user)
}

// Login runs the login state machine for the account:
//
//   - unknown account: common.ErrNotFound
//   - lockout still in effect: common.ErrLockedOut, no mutation
//   - wrong password: attempt counter incremented, or, after the counter has
//     reached maxLoginAttempts, the account transitions to locked with the
//     counter reset; common.ErrBadCredential either way
//   - correct password: counter reset, nil
//
// Lockout expiry is evaluated lazily here; an expired lockout falls through
// to the password check.
func (s *Service) Login(ctx context.Context, username, password string) error {
	s.loginMu.Lock()
	defer s.loginMu.Unlock()

	user, err := s.repo.FindByName(ctx, username)
	if err != nil {
		return err
	}

	if user.Lockout != nil && s.now().Before(user.Lockout.Add(s.lockoutDuration)) {
		return common.ErrLockedOut
	}

	if user.Password != password {
		if err := s.recordFailedAttempt(ctx, user); err != nil {
			return err
		}
		return common.ErrBadCredential
	}

	user.LoginAttempts = 0
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info(ctx, "login ok", "username", username)
	return nil
}

func (s *Service) recordFailedAttempt(ctx context.Context, user *User) error {
	if user.LoginAttempts < maxLoginAttempts {
		user.LoginAttempts++
	} else {
		now := s.now()
		user.Lockout = &now
		user.LoginAttempts = 0
		s.logger.Warn(ctx, "account locked out", "username", user.Username)
	}
	return s.repo.Update(ctx, user)
}
