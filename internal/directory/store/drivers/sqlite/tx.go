package sqlite

import (
	"context"
	"database/sql"
	"sync/atomic"

	"github.com/aussiebroadwan/directory/internal/directory/store"
)

type txStore struct {
	tx    *sql.Tx
	ready *atomic.Bool
}

func newTx(tx *sql.Tx, ready *atomic.Bool) *txStore {
	return &txStore{tx: tx, ready: ready}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the caller commits or rolls back and the outer DB stays open.
func (t *txStore) Close() error   { return nil }
func (t *txStore) Driver() string { return DriverName }

// Ping is a no-op; the connection is held for the life of the transaction.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) conn() conn { return conn{q: t.tx, ready: t.ready} }

func (t *txStore) Users() store.Users           { return &usersRepo{conn: t.conn()} }
func (t *txStore) Businesses() store.Businesses { return &businessesRepo{conn: t.conn()} }
func (t *txStore) Reviews() store.Reviews       { return &reviewsRepo{conn: t.conn()} }

// ApplyMigrations is a no-op; migrations run before any transaction starts.
func (t *txStore) ApplyMigrations() error { return nil }
