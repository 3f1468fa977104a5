package db

import (
	"context"
	"database/sql"

	"github.com/prattle-chat/prattle/internal/server/channels"
	"github.com/prattle-chat/prattle/internal/server/messages"
	"github.com/prattle-chat/prattle/internal/server/users"
)

type InMemoryRepositoryManager struct {
	users    users.Repository
	channels channels.Repository
	messages messages.Repository
}

func (m InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m InMemoryRepositoryManager) Channels() channels.Repository {
	return m.channels
}

func (m InMemoryRepositoryManager) Messages() messages.Repository {
	return m.messages
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return InMemoryRepositoryManager{
		users:    users.NewInMemoryRepository(),
		channels: channels.NewInMemoryRepository(),
		messages: messages.NewInMemoryRepository(),
	}
}
