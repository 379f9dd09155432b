package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ecold-outreach/internal/entity"
)

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	u := entity.NewUser("alex@example.com", "Alex", "hash")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WithArgs(u.ID, u.Email, u.Name, u.PasswordHash, u.CreatedAt, u.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value"})

	err = repo.Create(context.Background(), entity.NewUser("alex@example.com", "Alex", "hash"))

	assert.ErrorIs(t, err, entity.ErrEmailAlreadyExists)
}

func TestUserRepositoryCreatePassesOtherErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	boom := errors.New("connection reset")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).WillReturnError(boom)

	err = repo.Create(context.Background(), entity.NewUser("alex@example.com", "Alex", "hash"))

	assert.ErrorIs(t, err, boom)
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at", "updated_at"}).
		AddRow("u-1", "alex@example.com", "Alex", "hash", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("alex@example.com").
		WillReturnRows(rows)

	u, err := repo.FindByEmail(context.Background(), "alex@example.com")

	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "Alex", u.Name)
}

func TestUserRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewUserRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at", "updated_at"}))

	_, err = repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}
