package token

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStoreCreate(t *testing.T) {
	store, mock := newSQLMock(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens (token_id, user_id, created_at) VALUES ($1, $2, $3)")).
		WithArgs("tid-1", "u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Create(context.Background(), "tid-1", "u1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreConsumeFound(t *testing.T) {
	store, mock := newSQLMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE token_id = $1 AND user_id = $2")).
		WithArgs("tid-1", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	found, err := store.Consume(context.Background(), "tid-1", "u1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreConsumeNotFound(t *testing.T) {
	store, mock := newSQLMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE token_id = $1 AND user_id = $2")).
		WithArgs("tid-gone", "u1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := store.Consume(context.Background(), "tid-gone", "u1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDelete(t *testing.T) {
	store, mock := newSQLMock(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM refresh_tokens WHERE token_id = $1")).
		WithArgs("tid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Delete(context.Background(), "tid-1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreDeleteStale(t *testing.T) {
	store, mock := newSQLMock(t)

	mock.ExpectExec("DELETE FROM refresh_tokens t").
		WithArgs(sqlmock.AnyArg(), 500).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := store.DeleteStale(context.Background(), 30*24*time.Hour, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
