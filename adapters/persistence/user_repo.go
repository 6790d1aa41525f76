package persistence

import (
	"context"
	"encoding/json"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/domain/portfolio"
	"github.com/khoahotran/portfolio-builder/internal/domain/user"
	"github.com/khoahotran/portfolio-builder/pkg/apperror"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// PostgresUserRepo stores user records and, in the same row, the portfolio
// document each user owns.
type PostgresUserRepo struct {
	db     dbPool
	logger logger.Logger
}

func NewPostgresUserRepo(db dbPool, logger logger.Logger) *PostgresUserRepo {
	return &PostgresUserRepo{db: db, logger: logger}
}

var (
	_ user.Repository      = (*PostgresUserRepo)(nil)
	_ portfolio.Repository = (*PostgresUserRepo)(nil)
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var userColumns = []string{"id", "name", "email", "password_hash", "created_at"}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperror.NewInternal("failed to scan user row", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.Exec(ctx, query, u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return user.ErrEmailTaken
		}
		return apperror.NewInternal("failed to insert user", err)
	}
	return nil
}

func (r *PostgresUserRepo) findOne(ctx context.Context, where sq.Eq) (*user.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build user query", err)
	}
	return scanUser(r.db.QueryRow(ctx, query, args...))
}

func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findOne(ctx, sq.Eq{"email": email})
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findOne(ctx, sq.Eq{"id": id})
}

func (r *PostgresUserRepo) decodePortfolio(userID uuid.UUID, raw []byte) (portfolio.Document, error) {
	doc := portfolio.Document{}
	if len(raw) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		r.logger.Error("Failed to unmarshal portfolio", err, zap.String("user_id", userID.String()))
		return nil, apperror.NewInternal("failed to unmarshal portfolio", err)
	}
	if doc == nil {
		// stored JSON null
		doc = portfolio.Document{}
	}
	return doc, nil
}

func (r *PostgresUserRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (portfolio.Document, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT portfolio FROM users WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperror.NewInternal("failed to query portfolio", err)
	}
	return r.decodePortfolio(userID, raw)
}

func (r *PostgresUserRepo) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return false, apperror.NewInternal("failed to check user", err)
	}
	return exists, nil
}

func (r *PostgresUserRepo) Save(ctx context.Context, userID uuid.UUID, doc portfolio.Document) (portfolio.Document, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return nil, apperror.NewInternal("failed to marshal portfolio", err)
	}

	query := `
		UPDATE users SET portfolio = $2
		WHERE id = $1
		RETURNING portfolio
	`
	var raw []byte
	err = r.db.QueryRow(ctx, query, userID, payload).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound
		}
		return nil, apperror.NewInternal("failed to update portfolio", err)
	}
	return r.decodePortfolio(userID, raw)
}
