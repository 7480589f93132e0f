package settings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/stacklok/formsync-server/internal/db/sqlc"
)

// DBStore keeps settings in the formsync_setting table, one JSON value per key
type DBStore struct {
	queries sqlc.Querier
}

var _ Store = (*DBStore)(nil)

// NewDBStore returns a store over the given queries
func NewDBStore(queries sqlc.Querier) *DBStore {
	return &DBStore{queries: queries}
}

// Get implements Store. Stored values go through Resolve like any other input.
func (s *DBStore) Get(ctx context.Context) (Settings, error) {
	rows, err := s.queries.ListSettings(ctx)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	raw := make(map[string]any, len(rows))
	for _, row := range rows {
		dec := json.NewDecoder(bytes.NewReader(row.Value))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return Settings{}, fmt.Errorf("failed to decode setting %s: %w", row.Name, err)
		}
		raw[row.Name] = v
	}
	return Resolve(raw)
}

// Save implements Store
func (s *DBStore) Save(ctx context.Context, settings Settings) error {
	for name, value := range settings.ToMap() {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode setting %s: %w", name, err)
		}
		if err := s.queries.UpsertSetting(ctx, sqlc.UpsertSettingParams{Name: name, Value: data}); err != nil {
			return fmt.Errorf("failed to save setting %s: %w", name, err)
		}
	}
	return nil
}
