package messages

import (
	"context"
)

// Repository is the storage contract for the message log. Add assigns the
// message id. Query methods return unordered results; chronological
// ordering is applied by the service. Driver failures are wrapped with
// common.ErrStorage.
type Repository interface {
	Add(ctx context.Context, message *Message) (*Message, error)
	ByFrom(ctx context.Context, username string) ([]Message, error)
	ByTo(ctx context.Context, username string) ([]Message, error)
	ByChannel(ctx context.Context, channelID int64) ([]Message, error)
	Between(ctx context.Context, user1, user2 string) ([]Message, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
}
