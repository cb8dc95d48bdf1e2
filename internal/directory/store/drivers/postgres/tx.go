package postgres

import (
	"context"
	"sync/atomic"

	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/jackc/pgx/v5"
)

type txStore struct {
	ctx   context.Context
	tx    pgx.Tx
	ready *atomic.Bool
}

func newTx(ctx context.Context, tx pgx.Tx, ready *atomic.Bool) *txStore {
	return &txStore{ctx: ctx, tx: tx, ready: ready}
}

func (t *txStore) Commit() error   { return t.tx.Commit(t.ctx) }
func (t *txStore) Rollback() error { return t.tx.Rollback(t.ctx) }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Driver() string                 { return DriverName }
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, pgx.ErrTxClosed
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return pgx.ErrTxClosed
}

func (t *txStore) conn() conn { return conn{q: t.tx, ready: t.ready} }

func (t *txStore) Users() store.Users           { return &usersRepo{conn: t.conn()} }
func (t *txStore) Businesses() store.Businesses { return &businessesRepo{conn: t.conn()} }
func (t *txStore) Reviews() store.Reviews       { return &reviewsRepo{conn: t.conn()} }

func (t *txStore) ApplyMigrations() error { return nil }
