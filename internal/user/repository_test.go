package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestFindOrCreateExistingUser(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE naver_auth_id = $1")).
		WithArgs("naver-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u1"))

	id, err := repo.FindOrCreate(context.Background(), "naver-1")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindOrCreateNewUser(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM users WHERE naver_auth_id = $1")).
		WithArgs("naver-2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(sqlmock.AnyArg(), "naver-2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("u2"))

	id, err := repo.FindOrCreate(context.Background(), "naver-2")
	require.NoError(t, err)
	assert.Equal(t, "u2", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDMissing(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery("SELECT id, naver_auth_id, nickname").
		WithArgs("nobody").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nobody")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRandomNickname(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		nick, err := randomNickname(12)
		require.NoError(t, err)
		assert.Len(t, nick, 12)
		assert.Regexp(t, "^[a-z0-9]+$", nick)
		seen[nick] = true
	}
	assert.Greater(t, len(seen), 1)
}
