// Package postgres holds shared pgx pool construction and error helpers for
// the Postgres-backed stores.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the DDL for the tables this package's stores use. The test
// harness applies it to a scratch database; deployments run it as a
// migration.
//
//go:embed schema.sql
var Schema string

// Error codes we branch on (PostgreSQL SQLSTATE).
const (
	UniqueViolationCode     = "23505"
	ForeignKeyViolationCode = "23503"
)

// PoolOptions tunes pool construction; zero values get sane defaults.
type PoolOptions struct {
	MaxConns          int32
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

// NewPool parses the DSN and opens a pgx pool, verifying connectivity once.
func NewPool(ctx context.Context, dsn string, opts PoolOptions) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("empty postgres dsn (set DATABASE_URL)")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.HealthCheckPeriod > 0 {
		cfg.HealthCheckPeriod = opts.HealthCheckPeriod
	}
	if opts.ConnectTimeout > 0 {
		cfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

// AsPgError unwraps a *pgconn.PgError if present.
func AsPgError(err error) (*pgconn.PgError, bool) {
	pe := (*pgconn.PgError)(nil)
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
