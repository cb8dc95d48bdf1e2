package app

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/internal/directory/store/drivers/postgres"
	"github.com/aussiebroadwan/directory/internal/directory/store/drivers/sqlite"
)

// OpenStore opens the record store selected by cfg. Migrations are not
// applied here.
func OpenStore(ctx context.Context, cfg Directory) (store.Store, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		dsn := cfg.DatabaseFile
		if dsn != ":memory:" {
			dsn = fmt.Sprintf("file:%s?_txlock=immediate", cfg.DatabaseFile)
		}
		s, err := sqlite.NewStore(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, nil
	case DriverPostgres:
		s, err := postgres.NewStore(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
