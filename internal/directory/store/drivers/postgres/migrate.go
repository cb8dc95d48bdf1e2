package postgres

import (
	"errors"

	"github.com/aussiebroadwan/directory/internal/directory/store/drivers/postgres/migrations"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"
)

// ApplyMigrations applies pending migrations from the embedded files through
// a database/sql view of the pool, then marks the store ready.
func (s *Store) ApplyMigrations() error {
	db := stdlib.OpenDBFromPool(s.pool)

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return err
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	s.ready.Store(true)
	return nil
}
