package forms

import (
	"context"
	"slices"
	"strings"
	"sync"

	"k8s.io/utils/clock"
)

// MemoryStorage keeps forms in process memory
type MemoryStorage struct {
	mu    sync.RWMutex
	forms map[string]*Form
	clock clock.PassiveClock
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage returns an empty in-memory storage
func NewMemoryStorage(clk clock.PassiveClock) *MemoryStorage {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &MemoryStorage{
		forms: make(map[string]*Form),
		clock: clk,
	}
}

// Load implements Storage
func (m *MemoryStorage) Load(_ context.Context, id string) (*Form, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	f, ok := m.forms[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f.Clone(), nil
}

// LoadAll implements Storage
func (m *MemoryStorage) LoadAll(_ context.Context) ([]*Form, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Form, 0, len(m.forms))
	for _, f := range m.forms {
		out = append(out, f.Clone())
	}
	slices.SortFunc(out, func(a, b *Form) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// Save implements Storage
func (m *MemoryStorage) Save(_ context.Context, f *Form) error {
	if err := ValidateID(f.ID); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if f.UpdatedAt.IsZero() {
		f.UpdatedAt = m.clock.Now()
	}
	if existing, ok := m.forms[f.ID]; ok {
		f.CreatedAt = existing.CreatedAt
		f.UUID = existing.UUID
	} else if f.CreatedAt.IsZero() {
		f.CreatedAt = f.UpdatedAt
	}
	f.isNew = false

	m.forms[f.ID] = f.Clone()
	return nil
}

// Delete implements Storage
func (m *MemoryStorage) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.forms[id]; !ok {
		return ErrNotFound
	}
	delete(m.forms, id)
	return nil
}
