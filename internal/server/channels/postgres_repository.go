package channels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prattle-chat/prattle/internal/common"
	"github.com/prattle-chat/prattle/internal/dbx"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, channel *Channel) (*Channel, error) {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO channels (name) VALUES ($1) RETURNING id`,
			channel.Name).Scan(&channel.ID)
		if err != nil {
			return err
		}
		return insertMembers(ctx, tx, channel)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	return channel, nil
}

func insertMembers(ctx context.Context, tx dbx.DBTX, channel *Channel) error {
	for _, username := range channel.Participants {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO channel_participants (channel_id, username) VALUES ($1, $2)`,
			channel.ID, username); err != nil {
			return err
		}
	}
	for _, username := range channel.Mods {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO channel_mods (channel_id, username) VALUES ($1, $2)`,
			channel.ID, username); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Channel, error) {
	channel := &Channel{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM channels WHERE id = $1`, id).
		Scan(&channel.ID, &channel.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	channel.Participants, err = r.members(ctx, `SELECT username FROM channel_participants WHERE channel_id = $1 ORDER BY username`, id)
	if err != nil {
		return nil, err
	}
	channel.Mods, err = r.members(ctx, `SELECT username FROM channel_mods WHERE channel_id = $1 ORDER BY username`, id)
	if err != nil {
		return nil, err
	}

	return channel, nil
}

func (r *PostgresRepository) members(ctx context.Context, query string, id int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		result = append(result, username)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]Channel, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	result := make([]Channel, 0, len(ids))
	for _, id := range ids {
		channel, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		result = append(result, *channel)
	}
	return result, nil
}

// Update rewrites the channel row and both membership tables in one
// transaction.
func (r *PostgresRepository) Update(ctx context.Context, channel *Channel) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE channels SET name = $2 WHERE id = $1`, channel.ID, channel.Name)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return common.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM channel_participants WHERE channel_id = $1`, channel.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM channel_mods WHERE channel_id = $1`, channel.ID); err != nil {
			return err
		}
		return insertMembers(ctx, tx, channel)
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM channels`)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return nil
}
