package users

import (
	"context"
)

// Repository is the storage contract for accounts. Implementations must
// return common.ErrAlreadyExists from Create on duplicate usernames,
// common.ErrNotFound from FindByName/Update on missing ones, and wrap any
// driver failure with common.ErrStorage.
type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	FindByName(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, username string) error
	DeleteAll(ctx context.Context) error
}
