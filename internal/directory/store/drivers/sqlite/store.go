package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/directory/internal/directory/store"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DriverName is reported by Store.Driver.
const DriverName = "sqlite"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn is what every repo holds: a querier plus the store's readiness flag.
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
	db    *sql.DB
	dsn   string
	ready atomic.Bool
}

// NewStore opens a sqlite database. Foreign keys and a busy timeout are set
// on every pooled connection through the DSN; in-memory databases are
// pinned to a single connection so the pool cannot hand out an empty one.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}

	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

// newStoreFromDB wraps an existing handle; used with sqlmock.
func newStoreFromDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func isMemory(dsn string) bool {
	return strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

func (s *Store) Close() error   { return s.db.Close() }
func (s *Store) Driver() string { return DriverName }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if !s.ready.Load() {
		return nil, store.ErrNotInitialized
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, &s.ready), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) conn() conn { return conn{q: s.db, ready: &s.ready} }

func (s *Store) Users() store.Users           { return &usersRepo{conn: s.conn()} }
func (s *Store) Businesses() store.Businesses { return &businessesRepo{conn: s.conn()} }
func (s *Store) Reviews() store.Reviews       { return &reviewsRepo{conn: s.conn()} }

// inTx runs fn inside a transaction, reusing q when it already is one.
func inTx(ctx context.Context, q querier, fn func(q querier) error) error {
	db, ok := q.(*sql.DB)
	if !ok {
		return fn(q)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapWriteErr translates constraint violations into store sentinels.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", store.ErrAlreadyExists, se.Error())
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %s", store.ErrNotFound, se.Error())
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"),
		strings.Contains(msg, "PRIMARY KEY constraint failed"):
		return fmt.Errorf("%w: %s", store.ErrAlreadyExists, msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s", store.ErrNotFound, msg)
	}
	return err
}

// expectAffected turns a zero-row write into ErrNotFound.
func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return mapWriteErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Timestamps are stored as fixed-width UTC text so they sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON[T any](s string, dst *T) error {
	if s == "" || s == "null" {
		return nil
	}
	return json.Unmarshal([]byte(s), dst)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}
