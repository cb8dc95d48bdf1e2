package store

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// SeedFunc populates an empty store inside a transaction.
type SeedFunc func(ctx context.Context, tx Tx) error

// Initialize applies migrations and, when the users collection is empty,
// runs seed. Migration failures are returned; seeding failures are logged
// and swallowed so the store stays usable.
func Initialize(ctx context.Context, s Store, seed SeedFunc) error {
	log := slogx.Category(ctx, "database")

	if err := s.ApplyMigrations(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	log.Info("migrations applied", "driver", s.Driver())

	if seed == nil {
		return nil
	}

	empty, err := s.Users().IsEmpty(ctx)
	if err != nil {
		log.Error("seed check failed", "err", err)
		return nil
	}
	if !empty {
		log.Debug("store already populated, skipping seed")
		return nil
	}

	if err := s.WithTx(ctx, func(tx Tx) error { return seed(ctx, tx) }); err != nil {
		log.Error("seeding failed", "err", err)
		return nil
	}

	log.Info("seeded demonstration data")
	return nil
}
