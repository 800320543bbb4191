package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserRepoMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(sqlxdb), mock
}

func TestFindByUsername(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "username", "password_hash", "active", "last_login"}).
		AddRow(int64(1), "dispatcher", "hash", true, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash, active, last_login FROM api_users WHERE username = $1 LIMIT 1")).
		WithArgs("dispatcher").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "dispatcher")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.True(t, user.Active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameMissing(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery("SELECT id, username").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateLastLogin(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE api_users SET last_login = $2 WHERE id = $1")).
		WithArgs(int64(1), ts).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), 1, ts))
	assert.NoError(t, mock.ExpectationsWereMet())
}
