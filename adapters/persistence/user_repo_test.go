package persistence

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

func newMockRepo(t *testing.T) (*PostgresUserRepo, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return NewPostgresUserRepo(mock, logger.NewNop()), mock
}

var userRowColumns = []string{"id", "name", "email", "password_hash", "created_at"}

func TestPostgresUserRepo_Create(t *testing.T) {
	u := &user.User{
		ID:           uuid.New(),
		Name:         "Ann",
		Email:        "ann@x.com",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC(),
	}

	t.Run("inserts", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, repo.Create(context.Background(), u))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

		err := repo.Create(context.Background(), u)
		assert.ErrorIs(t, err, user.ErrEmailTaken)
		assert.Equal(t, 409, apperror.ToHTTPStatus(err))
	})

	t.Run("other errors are internal", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(context.Background(), u)
		assert.ErrorIs(t, err, apperror.ErrInternal)
	})
}

func TestPostgresUserRepo_FindByEmail(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`)
	id := uuid.New()
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("found", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs("ann@x.com").
			WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(id, "Ann", "ann@x.com", "hash", created))

		got, err := repo.FindByEmail(context.Background(), "ann@x.com")
		require.NoError(t, err)
		assert.Equal(t, &user.User{ID: id, Name: "Ann", Email: "ann@x.com", PasswordHash: "hash", CreatedAt: created}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("nobody@x.com").WillReturnError(pgx.ErrNoRows)

		_, err := repo.FindByEmail(context.Background(), "nobody@x.com")
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs("ann@x.com").WillReturnError(errors.New("timeout"))

		_, err := repo.FindByEmail(context.Background(), "ann@x.com")
		assert.ErrorIs(t, err, apperror.ErrInternal)
	})
}

func TestPostgresUserRepo_FindByID(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`)
	id := uuid.New()

	repo, mock := newMockRepo(t)
	mock.ExpectQuery(query).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(userRowColumns).AddRow(id, "Ann", "ann@x.com", "hash", time.Now()))

	got, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepo_GetByUserID(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT portfolio FROM users WHERE id = $1`)
	id := uuid.New()

	t.Run("stored document", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"portfolio"}).AddRow([]byte(`{"fullName":"Ann","skills":["go"]}`)))

		doc, err := repo.GetByUserID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, portfolio.Document{"fullName": "Ann", "skills": []any{"go"}}, doc)
	})

	t.Run("json null reads as empty", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"portfolio"}).AddRow([]byte(`null`)))

		doc, err := repo.GetByUserID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, portfolio.Document{}, doc)
	})

	t.Run("unknown user", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByUserID(context.Background(), id)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})

	t.Run("corrupt document", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"portfolio"}).AddRow([]byte(`[1,2]`)))

		_, err := repo.GetByUserID(context.Background(), id)
		assert.ErrorIs(t, err, apperror.ErrInternal)
	})
}

func TestPostgresUserRepo_Save(t *testing.T) {
	id := uuid.New()
	doc := portfolio.Document{"fullName": "Ann"}

	t.Run("replaces document", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE users SET portfolio`).
			WithArgs(id, []byte(`{"fullName":"Ann"}`)).
			WillReturnRows(pgxmock.NewRows([]string{"portfolio"}).AddRow([]byte(`{"fullName": "Ann"}`)))

		saved, err := repo.Save(context.Background(), id, doc)
		require.NoError(t, err)
		assert.Equal(t, doc, saved)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(`UPDATE users SET portfolio`).
			WithArgs(id, []byte(`{"fullName":"Ann"}`)).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.Save(context.Background(), id, doc)
		assert.ErrorIs(t, err, user.ErrUserNotFound)
	})
}

func TestPostgresUserRepo_Exists(t *testing.T) {
	query := regexp.QuoteMeta(`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`)
	id := uuid.New()

	t.Run("present", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs(id).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.Exists(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deleted", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs(id).WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := repo.Exists(context.Background(), id)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("driver error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectQuery(query).WithArgs(id).WillReturnError(errors.New("timeout"))

		_, err := repo.Exists(context.Background(), id)
		assert.ErrorIs(t, err, apperror.ErrInternal)
	})
}
