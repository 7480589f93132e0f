package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"github.com/stacklok/formsync-server/internal/db/sqlc"
)

// DBStorage persists forms in Postgres
type DBStorage struct {
	queries sqlc.Querier
}

var _ Storage = (*DBStorage)(nil)

// NewDBStorage returns a storage over the given queries, which may be bound to a transaction
func NewDBStorage(queries sqlc.Querier) *DBStorage {
	return &DBStorage{queries: queries}
}

// Load implements Storage
func (s *DBStorage) Load(ctx context.Context, id string) (*Form, error) {
	row, err := s.queries.GetWebform(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load form %s: %w", id, err)
	}
	return fromRow(row)
}

// LoadAll implements Storage
func (s *DBStorage) LoadAll(ctx context.Context) ([]*Form, error) {
	rows, err := s.queries.ListWebforms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	out := make([]*Form, 0, len(rows))
	for _, row := range rows {
		f, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Save implements Storage. The row's timestamp is f.UpdatedAt, which the caller
// is expected to set; created_at is kept on update.
func (s *DBStorage) Save(ctx context.Context, f *Form) error {
	if err := ValidateID(f.ID); err != nil {
		return err
	}
	if f.UpdatedAt.IsZero() {
		return fmt.Errorf("form %s: UpdatedAt must be set before saving", f.ID)
	}
	if f.Sync.UpdateInterval < 0 || f.Sync.UpdateInterval > math.MaxInt32 {
		return fmt.Errorf("%w: update interval out of range", ErrInvalidField)
	}

	settings, err := marshalMap(f.Settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings for form %s: %w", f.ID, err)
	}
	extra, err := marshalMap(f.Extra)
	if err != nil {
		return fmt.Errorf("failed to encode attributes for form %s: %w", f.ID, err)
	}

	row, err := s.queries.UpsertWebform(ctx, sqlc.UpsertWebformParams{
		ID:             f.ID,
		Uuid:           f.UUID,
		Title:          f.Title,
		Description:    f.Description,
		Category:       f.Category,
		Elements:       f.Elements,
		Settings:       settings,
		Extra:          extra,
		Publish:        f.Sync.Publish,
		UpdateInterval: int32(f.Sync.UpdateInterval), // #nosec G115 -- range checked above
		Now:            f.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to save form %s: %w", f.ID, err)
	}

	f.CreatedAt = row.CreatedAt
	f.UpdatedAt = row.UpdatedAt
	f.isNew = false
	return nil
}

// Delete implements Storage
func (s *DBStorage) Delete(ctx context.Context, id string) error {
	n, err := s.queries.DeleteWebform(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete form %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func fromRow(row sqlc.Webform) (*Form, error) {
	f := &Form{
		ID:          row.ID,
		UUID:        row.Uuid,
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		Elements:    row.Elements,
		Sync: SyncSettings{
			Publish:        row.Publish,
			UpdateInterval: int(row.UpdateInterval),
		},
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := unmarshalMap(row.Settings, &f.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings for form %s: %w", row.ID, err)
	}
	if err := unmarshalMap(row.Extra, &f.Extra); err != nil {
		return nil, fmt.Errorf("failed to decode attributes for form %s: %w", row.ID, err)
	}
	return f, nil
}

func marshalMap(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte(`{}`), nil
	}
	return json.Marshal(m)
}

func unmarshalMap(data []byte, out *map[string]any) error {
	*out = map[string]any{}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
