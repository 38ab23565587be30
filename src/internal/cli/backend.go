package cli

import (
	"context"
	"fmt"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/memory"
	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/postgres"
	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/sqlite"
	"github.com/api-sage/ledger-engine/src/internal/config"
	"github.com/api-sage/ledger-engine/src/internal/domain"
)

// backend pairs the customer registry with the journal that shares its
// storage. Closing the journal releases the storage.
type backend struct {
	customers domain.CustomerRepository
	journal   domain.Journal
}

func openBackend(ctx context.Context, cfg config.Config, migrate bool) (backend, error) {
	switch cfg.JournalDriver {
	case config.JournalMemory:
		return backend{
			customers: memory.NewCustomerRepository(),
			journal:   memory.NewJournal(),
		}, nil

	case config.JournalPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return backend{}, err
		}
		if migrate {
			if err := postgres.RunMigrations(ctx, db, cfg.MigrationsDir); err != nil {
				_ = db.Close()
				return backend{}, fmt.Errorf("run migrations: %w", err)
			}
		}
		return backend{
			customers: postgres.NewCustomerRepository(db),
			journal:   postgres.NewJournalRepository(db),
		}, nil

	case config.JournalSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return backend{}, err
		}
		return backend{
			customers: sqlite.NewCustomerRepository(db),
			journal:   sqlite.NewJournal(db),
		}, nil

	default:
		return backend{}, fmt.Errorf("unsupported journal driver %q", cfg.JournalDriver)
	}
}
