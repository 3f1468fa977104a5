package channels

import (
	"context"
)

// Repository is the storage contract for channels. GetByID, Update and
// Delete return common.ErrNotFound for unknown ids; driver failures are
// wrapped with common.ErrStorage. Create assigns the channel id.
type Repository interface {
	Create(ctx context.Context, channel *Channel) (*Channel, error)
	GetByID(ctx context.Context, id int64) (*Channel, error)
	List(ctx context.Context) ([]Channel, error)
	Update(ctx context.Context, channel *Channel) error
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}
