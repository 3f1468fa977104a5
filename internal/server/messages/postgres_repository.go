package messages

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prattle-chat/prattle/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

const messageColumns = `id, from_username, to_username, to_channel_id, content, timestamp, from_avatar, to_avatar`

func (r *PostgresRepository) Add(ctx context.Context, message *Message) (*Message, error) {
	query :=
		`INSERT INTO messages (from_username, to_username, to_channel_id, content, timestamp, from_avatar, to_avatar)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		message.FromUsername, message.ToUsername, message.ToChannelID,
		message.Content, message.Timestamp, message.FromAvatar, message.ToAvatar).
		Scan(&message.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	return message, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []Message
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.FromUsername, &m.ToUsername, &m.ToChannelID,
			&m.Content, &m.Timestamp, &m.FromAvatar, &m.ToAvatar)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	return result, nil
}

func (r *PostgresRepository) ByFrom(ctx context.Context, username string) ([]Message, error) {
	return r.query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE from_username = $1`, username)
}

func (r *PostgresRepository) ByTo(ctx context.Context, username string) ([]Message, error) {
	return r.query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE to_username = $1`, username)
}

func (r *PostgresRepository) ByChannel(ctx context.Context, channelID int64) ([]Message, error) {
	return r.query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE to_channel_id = $1`, channelID)
}

func (r *PostgresRepository) Between(ctx context.Context, user1, user2 string) ([]Message, error) {
	return r.query(ctx,
		`SELECT `+messageColumns+` FROM messages
		 WHERE (from_username = $1 AND to_username = $2)
		    OR (from_username = $2 AND to_username = $1)`, user1, user2)
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM messages`)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}
