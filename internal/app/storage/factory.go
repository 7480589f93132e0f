// Package storage creates the stores the form sync service runs on as a
// family: either all Postgres-backed or all in memory.
package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"k8s.io/utils/clock"

	"github.com/stacklok/formsync-server/internal/config"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/settings"
)

// Factory provides compatible storage components and owns their resources
type Factory interface {
	// FormStorage returns the local form storage. Deleting a form through it
	// also deletes the form's provenance record.
	FormStorage() forms.Storage

	// ProvenanceStore returns the provenance store
	ProvenanceStore() provenance.Store

	// SettingsStore returns the runtime settings store
	SettingsStore() settings.Store

	// UnitOfWork returns the unit of work imports write through
	UnitOfWork() importer.UnitOfWork

	// Ready reports whether the backing storage is reachable
	Ready(ctx context.Context) error

	// Cleanup releases held resources, e.g. the connection pool
	Cleanup()
}

// NewStorageFactory returns a database factory when cfg has a database
// section and a memory factory otherwise. Settings are seeded from the
// catalog section when nothing has been stored yet.
func NewStorageFactory(ctx context.Context, cfg *config.Config, clk clock.PassiveClock) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	seed := SeedSettings(cfg)
	if cfg.Database == nil {
		slog.Warn("No database configured, forms and provenance are kept in memory")
		return NewMemoryFactory(seed, clk), nil
	}
	return NewDatabaseFactory(ctx, cfg.Database, seed)
}

// SeedSettings converts the catalog section of cfg to settings
func SeedSettings(cfg *config.Config) settings.Settings {
	s := settings.Defaults()
	if len(cfg.Catalog.Sources) > 0 {
		s.Sources = append([]string(nil), cfg.Catalog.Sources...)
	}
	s.SourcesTTL = int(cfg.Catalog.GetTTL() / time.Second)
	return s
}
