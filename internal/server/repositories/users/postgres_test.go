package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hynorvixx/backend/internal/common"
	"github.com/hynorvixx/backend/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQ   = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,\s*password_hash\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+is_active,\s*created_at,\s*updated_at$`
	byEmailQ  = `(?s)^SELECT\s+id,\s*email,\s*password_hash,\s*is_active,\s*created_at,\s*updated_at,\s*last_login\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	byIDQ     = `(?s)^SELECT\s+id,.*\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
	existsQ   = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\)$`
	lastLogQ  = `(?s)^UPDATE\s+users\s+SET\s+last_login\s*=\s*\$2,\s*updated_at\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`
	deactQ    = `(?s)^UPDATE\s+users\s+SET\s+is_active\s*=\s*FALSE,\s*updated_at\s*=\s*NOW\(\)\s+WHERE\s+id\s*=\s*\$1$`
	userID    = "0192f0c4-4a55-7c1e-9d3b-2f6b1d0c9a11"
	userEmail = "alice@example.com"
)

var userCols = []string{"id", "email", "password_hash", "is_active", "created_at", "updated_at", "last_login"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(insertQ).
		WithArgs(userID, userEmail, "hash").
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "created_at", "updated_at"}).AddRow(true, now, now))

	got, err := repo.Create(context.Background(), &models.User{ID: userID, Email: userEmail, PasswordHash: "hash"})
	require.NoError(t, err)
	assert.True(t, got.IsActive)
	assert.Equal(t, now, got.CreatedAt)
	assert.Nil(t, got.LastLogin)
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs(userID, userEmail, "hash").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_uq"})

	_, err := repo.Create(context.Background(), &models.User{ID: userID, Email: userEmail, PasswordHash: "hash"})
	assert.ErrorIs(t, err, common.ErrIdentityExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: userID, Email: userEmail, PasswordHash: "hash"})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByEmail(t *testing.T) {
	now := time.Now().UTC()

	t.Run("found with last login", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(byEmailQ).WithArgs(userEmail).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(userID, userEmail, "hash", false, now, now, now))

		got, err := repo.GetByEmail(context.Background(), userEmail)
		require.NoError(t, err)
		assert.Equal(t, userID, got.ID)
		assert.False(t, got.IsActive, "inactive users are still returned")
		require.NotNil(t, got.LastLogin)
		assert.Equal(t, now, *got.LastLogin)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(byEmailQ).WithArgs("ghost@example.com").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(context.Background(), "ghost@example.com")
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(byEmailQ).WithArgs(userEmail).WillReturnError(errors.New("conn reset"))

		_, err := repo.GetByEmail(context.Background(), userEmail)
		require.Error(t, err)
		assert.NotErrorIs(t, err, common.ErrorNotFound)
		assert.Contains(t, err.Error(), "db error")
	})
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(byIDQ).WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(userCols).AddRow(userID, userEmail, "hash", true, now, now, nil))

	got, err := repo.GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userEmail, got.Email)
	assert.Nil(t, got.LastLogin)
}

func TestExistsByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(existsQ).WithArgs(userEmail).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(existsQ).WithArgs("x@example.com").
		WillReturnError(errors.New("boom"))

	ok, err := repo.ExistsByEmail(context.Background(), userEmail)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.ExistsByEmail(context.Background(), "x@example.com")
	assert.Error(t, err)
}

func TestUpdateLastLogin(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Now().UTC()

	mock.ExpectExec(lastLogQ).WithArgs(userID, at).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(lastLogQ).WithArgs("missing", at).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), userID, at))
	assert.ErrorIs(t, repo.UpdateLastLogin(context.Background(), "missing", at), common.ErrorNotFound)
}

func TestDeactivate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deactQ).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(deactQ).WithArgs("missing").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(deactQ).WithArgs("broken").WillReturnError(errors.New("db down"))

	require.NoError(t, repo.Deactivate(context.Background(), userID))
	assert.ErrorIs(t, repo.Deactivate(context.Background(), "missing"), common.ErrorNotFound)
	err := repo.Deactivate(context.Background(), "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}
