package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/formsync-server/internal/config"
	"github.com/stacklok/formsync-server/internal/db"
	"github.com/stacklok/formsync-server/internal/db/sqlc"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/settings"
)

// DatabaseFactory creates Postgres-backed stores sharing one pool
type DatabaseFactory struct {
	pool       *pgxpool.Pool
	ownsPool   bool
	forms      forms.Storage
	provenance *provenance.DBStore
	settings   *settings.DBStore
}

var _ Factory = (*DatabaseFactory)(nil)

// NewDatabaseFactory connects to the configured database and seeds settings
// if none are stored. The schema must already be migrated.
func NewDatabaseFactory(ctx context.Context, cfg *config.DatabaseConfig, seed settings.Settings) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration is required")
	}

	slog.InfoContext(ctx, "Creating database-backed storage factory")

	conn, err := db.NewConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	f, err := NewDatabaseFactoryFromPool(ctx, conn.Pool, seed)
	if err != nil {
		conn.Close()
		return nil, err
	}
	f.ownsPool = true
	return f, nil
}

// NewDatabaseFactoryFromPool creates a factory over an existing pool. The
// caller keeps ownership of the pool.
func NewDatabaseFactoryFromPool(ctx context.Context, pool *pgxpool.Pool, seed settings.Settings) (*DatabaseFactory, error) {
	queries := sqlc.New(pool)
	prov := provenance.NewDBStore(queries)
	f := &DatabaseFactory{
		pool:       pool,
		forms:      forms.WithDeletionHooks(forms.NewDBStorage(queries), prov.Delete),
		provenance: prov,
		settings:   settings.NewDBStore(queries),
	}

	if err := seedIfEmpty(ctx, queries, f.settings, seed); err != nil {
		return nil, err
	}
	return f, nil
}

func seedIfEmpty(ctx context.Context, queries sqlc.Querier, store settings.Store, seed settings.Settings) error {
	rows, err := queries.ListSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to read settings: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	slog.InfoContext(ctx, "Seeding settings from configuration", "sources", len(seed.Sources), "ttl", seed.SourcesTTL)
	return store.Save(ctx, seed)
}

// FormStorage implements Factory
func (d *DatabaseFactory) FormStorage() forms.Storage { return d.forms }

// ProvenanceStore implements Factory
func (d *DatabaseFactory) ProvenanceStore() provenance.Store { return d.provenance }

// SettingsStore implements Factory
func (d *DatabaseFactory) SettingsStore() settings.Store { return d.settings }

// UnitOfWork implements Factory. Imports commit the form and its provenance record together.
func (d *DatabaseFactory) UnitOfWork() importer.UnitOfWork {
	return importer.NewPgxUnitOfWork(d.pool)
}

// Ready implements Factory
func (d *DatabaseFactory) Ready(ctx context.Context) error {
	return d.pool.Ping(ctx)
}

// Cleanup implements Factory
func (d *DatabaseFactory) Cleanup() {
	if d.ownsPool && d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}
