package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

// dbPool is the subset of pgxpool.Pool the repositories use. pgxmock and
// Database both satisfy it.
type dbPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewPostgresPool(ctx context.Context, dsn string, log logger.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("do not create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database failed: %w", err)
	}

	log.Info("Connect PostgreSQL successfully.")
	return pool, nil
}

// Database is the process-wide connection pool. It connects on first use,
// is shared by every request afterwards, and is released by Close.
// A failed connect is not cached; the next call tries again.
type Database struct {
	dsn    string
	logger logger.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

func NewDatabase(cfg config.Config, log logger.Logger) *Database {
	return &Database{dsn: cfg.DB.DSN, logger: log}
}

func (d *Database) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pool != nil {
		return d.pool, nil
	}
	pool, err := NewPostgresPool(ctx, d.dsn, d.logger)
	if err != nil {
		d.logger.Error("PostgreSQL connection failed", err)
		return nil, err
	}
	d.pool = pool
	return pool, nil
}

func (d *Database) Ping(ctx context.Context) error {
	pool, err := d.Pool(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

func (d *Database) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pool != nil {
		d.pool.Close()
		d.pool = nil
		d.logger.Info("PostgreSQL pool closed.")
	}
}

func (d *Database) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	pool, err := d.Pool(ctx)
	if err != nil {
		return pgconn.CommandTag{}, err
	}
	return pool.Exec(ctx, sql, args...)
}

func (d *Database) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	pool, err := d.Pool(ctx)
	if err != nil {
		return nil, err
	}
	return pool.Query(ctx, sql, args...)
}

func (d *Database) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	pool, err := d.Pool(ctx)
	if err != nil {
		return errRow{err: err}
	}
	return pool.QueryRow(ctx, sql, args...)
}

type errRow struct {
	err error
}

func (r errRow) Scan(...any) error {
	return r.err
}

func poolStats(pool *pgxpool.Pool) []zap.Field {
	s := pool.Stat()
	return []zap.Field{
		zap.Int32("total_conns", s.TotalConns()),
		zap.Int32("idle_conns", s.IdleConns()),
		zap.Int32("acquired_conns", s.AcquiredConns()),
	}
}

// LogStats writes pool usage, if the pool has been opened.
func (d *Database) LogStats() {
	d.mu.Lock()
	pool := d.pool
	d.mu.Unlock()
	if pool == nil {
		return
	}
	d.logger.Info("PostgreSQL pool stats", poolStats(pool)...)
}
