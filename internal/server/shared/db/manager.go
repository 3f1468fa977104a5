// Package db wires the repository implementations behind a single
// RepositoryManager, selected at startup: postgres-backed for normal runs,
// in-memory for tests and local development.
package db

import (
	"context"
	"database/sql"

	"github.com/prattle-chat/prattle/internal/server/channels"
	"github.com/prattle-chat/prattle/internal/server/messages"
	"github.com/prattle-chat/prattle/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	Channels() channels.Repository
	Messages() messages.Repository
}
