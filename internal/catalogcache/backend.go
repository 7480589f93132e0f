package catalogcache

//go:generate mockgen -destination=mocks/mock_backend.go -package=mocks -source=backend.go Backend

import (
	"context"
	"sync"
	"time"

	"github.com/stacklok/formsync-server/internal/catalog"
)

// Backend stores catalog listings by cache key. Entries at or past their
// expiry are reported as misses.
type Backend interface {
	Get(ctx context.Context, key string, now time.Time) ([]catalog.Entry, bool, error)
	Set(ctx context.Context, key string, entries []catalog.Entry, expiresAt time.Time) error
}

type memoryItem struct {
	entries   []catalog.Entry
	expiresAt time.Time
}

// MemoryBackend keeps listings in process memory. Get returns the stored
// slice itself, so callers must treat it as read-only.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]memoryItem
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{items: make(map[string]memoryItem)}
}

// Get implements Backend
func (b *MemoryBackend) Get(_ context.Context, key string, now time.Time) ([]catalog.Entry, bool, error) {
	b.mu.RLock()
	item, ok := b.items[key]
	b.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !now.Before(item.expiresAt) {
		b.mu.Lock()
		if cur, ok := b.items[key]; ok && !now.Before(cur.expiresAt) {
			delete(b.items, key)
		}
		b.mu.Unlock()
		return nil, false, nil
	}
	return item.entries, true, nil
}

// Set implements Backend
func (b *MemoryBackend) Set(_ context.Context, key string, entries []catalog.Entry, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[key] = memoryItem{entries: entries, expiresAt: expiresAt}
	return nil
}
