package settings

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps settings in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	settings Settings
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns a store holding initial
func NewMemoryStore(initial Settings) *MemoryStore {
	if initial.Sources == nil {
		initial.Sources = []string{}
	}
	return &MemoryStore{settings: initial}
}

// Get implements Store
func (m *MemoryStore) Get(_ context.Context) (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.settings
	s.Sources = slices.Clone(s.Sources)
	return s, nil
}

// Save implements Store
func (m *MemoryStore) Save(_ context.Context, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s.Sources = slices.Clone(s.Sources)
	if s.Sources == nil {
		s.Sources = []string{}
	}
	m.settings = s
	return nil
}
