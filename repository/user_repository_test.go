package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"studylab-api/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (id, email, password_hash, name) VALUES ($1, $2, $3, $4) RETURNING created_at`)).
		WithArgs(sqlmock.AnyArg(), "a@b.com", "hash", "Ann").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	user := &model.User{Email: "a@b.com", PasswordHash: "hash", Name: "Ann"}
	err := repo.Create(context.Background(), user)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, created, user.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: pgUniqueViolation})

	err := repo.Create(context.Background(), &model.User{Email: "a@b.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_Create_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	dbErr := errors.New("connection reset")

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(dbErr)

	err := repo.Create(context.Background(), &model.User{Email: "a@b.com"})
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserRepository_GetByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "created_at"}).
			AddRow(id.String(), "a@b.com", "hash", "", time.Now())
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email) = lower($1)`)).
			WithArgs("A@B.com").
			WillReturnRows(rows)

		user, err := repo.GetByEmail(context.Background(), "A@B.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "hash", user.PasswordHash)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`FROM users`).WithArgs("x@y.com").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByEmail(context.Background(), "x@y.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByID_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1`)).WithArgs(id).WillReturnError(sql.ErrConnDone)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}
