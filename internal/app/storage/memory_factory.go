package storage

import (
	"context"

	"k8s.io/utils/clock"

	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/settings"
)

// MemoryFactory keeps everything in process memory. Nothing survives a restart.
type MemoryFactory struct {
	forms      forms.Storage
	raw        *forms.MemoryStorage
	provenance *provenance.MemoryStore
	settings   *settings.MemoryStore
}

var _ Factory = (*MemoryFactory)(nil)

// NewMemoryFactory creates memory stores; seed is the initial settings
func NewMemoryFactory(seed settings.Settings, clk clock.PassiveClock) *MemoryFactory {
	raw := forms.NewMemoryStorage(clk)
	prov := provenance.NewMemoryStore()
	return &MemoryFactory{
		forms:      forms.WithDeletionHooks(raw, prov.Delete),
		raw:        raw,
		provenance: prov,
		settings:   settings.NewMemoryStore(seed),
	}
}

// FormStorage implements Factory
func (m *MemoryFactory) FormStorage() forms.Storage { return m.forms }

// ProvenanceStore implements Factory
func (m *MemoryFactory) ProvenanceStore() provenance.Store { return m.provenance }

// SettingsStore implements Factory
func (m *MemoryFactory) SettingsStore() settings.Store { return m.settings }

// UnitOfWork implements Factory. The two writes of an import are not atomic.
func (m *MemoryFactory) UnitOfWork() importer.UnitOfWork {
	return &importer.SequentialUnitOfWork{Forms: m.raw, Provenance: m.provenance}
}

// Ready implements Factory
func (*MemoryFactory) Ready(context.Context) error { return nil }

// Cleanup implements Factory
func (*MemoryFactory) Cleanup() {}
