package users

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prattle-chat/prattle/internal/common"
)

func newMockRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo, err := NewPostgresRepository(db)
	require.NoError(t, err)
	return repo, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"username", "password", "email", "first_name", "last_name",
		"bio", "avatar", "active", "login_attempts", "lockout",
	})
}

func TestPostgresFindByName(t *testing.T) {
	repo, mock := newMockRepo(t)

	locked := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(userRows().AddRow("alice", "pw", "a@x.io", "A", "L", "bio", 3, true, 1, locked))

	user, err := repo.FindByName(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, 3, user.Avatar)
	assert.Equal(t, 1, user.LoginAttempts)
	require.NotNil(t, user.Lockout)
	assert.True(t, user.Lockout.Equal(locked))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByName_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username").
		WithArgs("ghost").
		WillReturnRows(userRows())

	_, err := repo.FindByName(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresCreate(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs("alice", "pw", "", "", "", "", 0, true, 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.Create(context.Background(), &User{Username: "alice", Password: "pw", Active: true})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdate_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &User{Username: "ghost"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestPostgresList(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .+ FROM users ORDER BY username").
		WillReturnRows(userRows().
			AddRow("alice", "pw", "", "", "", "", 0, true, 0, nil).
			AddRow("bob", "pw", "", "", "", "", 0, false, 0, nil))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alice", list[0].Username)
	assert.False(t, list[1].Active)
}
