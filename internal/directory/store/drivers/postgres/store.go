package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DriverName is reported by Store.Driver.
const DriverName = "postgres"

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type conn struct {
	q     querier
	ready *atomic.Bool
}

func (c conn) get() (querier, error) {
	if !c.ready.Load() {
		return nil, store.ErrNotInitialized
	}
	return c.q, nil
}

type Store struct {
	pool  *pgxpool.Pool
	ready atomic.Bool
}

// NewStore connects a pgx pool to dsn and verifies the connection.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	conf, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("open connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Driver() string { return DriverName }

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if !s.ready.Load() {
		return nil, store.ErrNotInitialized
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return newTx(ctx, tx, &s.ready), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) conn() conn { return conn{q: s.pool, ready: &s.ready} }

func (s *Store) Users() store.Users           { return &usersRepo{conn: s.conn()} }
func (s *Store) Businesses() store.Businesses { return &businessesRepo{conn: s.conn()} }
func (s *Store) Reviews() store.Reviews       { return &reviewsRepo{conn: s.conn()} }

// inTx runs fn inside a transaction, reusing q when it already is one.
func inTx(ctx context.Context, q querier, fn func(q querier) error) error {
	pool, ok := q.(*pgxpool.Pool)
	if !ok {
		return fn(q)
	}
	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error { return fn(tx) })
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapWriteErr translates constraint violations into store sentinels.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s", store.ErrAlreadyExists, pgErr.ConstraintName)
		case codeForeignKeyViolation:
			return fmt.Errorf("%w: %s", store.ErrNotFound, pgErr.ConstraintName)
		}
	}
	return err
}

func expectAffected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON[T any](raw []byte, dst *T) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
