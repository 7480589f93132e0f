package provenance

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps provenance records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// RecordImport implements Store
func (m *MemoryStore) RecordImport(
	_ context.Context, localFormID, sourceURL, rawSource string, now time.Time,
) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[localFormID]
	if !ok {
		rec = Record{LocalFormID: localFormID, CreatedAt: now}
	}
	rec.SourceURL = sourceURL
	rec.RawSource = rawSource
	rec.UpdatedAt = now
	m.records[localFormID] = rec

	out := rec
	return &out, nil
}

// FindBySourceURL implements Store
func (m *MemoryStore) FindBySourceURL(ctx context.Context, sourceURL string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Record
	for _, rec := range m.records {
		if rec.SourceURL == sourceURL {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}

	slices.SortFunc(matches, compareRecords)
	if len(matches) > 1 {
		warnDuplicates(ctx, sourceURL, matches)
	}
	out := matches[0]
	return &out, nil
}

// FindByLocalFormID implements Store
func (m *MemoryStore) FindByLocalFormID(_ context.Context, localFormID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[localFormID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

// ListAll implements Store
func (m *MemoryStore) ListAll(_ context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sorted := make([]Record, 0, len(m.records))
	for _, rec := range m.records {
		sorted = append(sorted, rec)
	}
	slices.SortFunc(sorted, compareRecords)

	out := make([]*Record, len(sorted))
	for i := range sorted {
		out[i] = &sorted[i]
	}
	return out, nil
}

// Delete implements Store
func (m *MemoryStore) Delete(_ context.Context, localFormID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, localFormID)
	return nil
}

func compareRecords(a, b Record) int {
	return strings.Compare(a.LocalFormID, b.LocalFormID)
}

func warnDuplicates(ctx context.Context, sourceURL string, matches []Record) {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.LocalFormID
	}
	slog.WarnContext(ctx, "Several local forms share one source URL, using the lowest id",
		"source_url", sourceURL, "form_ids", ids)
}
