package provenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/stacklok/formsync-server/internal/db/sqlc"
)

// DBStore keeps provenance records in the webform_provenance table
type DBStore struct {
	queries sqlc.Querier
}

var _ Store = (*DBStore)(nil)

// NewDBStore returns a store over the given queries, which may be bound to a transaction
func NewDBStore(queries sqlc.Querier) *DBStore {
	return &DBStore{queries: queries}
}

// RecordImport implements Store with a single upsert statement
func (s *DBStore) RecordImport(
	ctx context.Context, localFormID, sourceURL, rawSource string, now time.Time,
) (*Record, error) {
	row, err := s.queries.UpsertProvenance(ctx, sqlc.UpsertProvenanceParams{
		WebformID: localFormID,
		SourceUrl: sourceURL,
		Source:    rawSource,
		Now:       now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record provenance for %s: %w", localFormID, err)
	}
	return fromRow(row), nil
}

// FindBySourceURL implements Store
func (s *DBStore) FindBySourceURL(ctx context.Context, sourceURL string) (*Record, error) {
	rows, err := s.queries.ListProvenanceBySourceURL(ctx, sourceURL)
	if err != nil {
		return nil, fmt.Errorf("failed to look up provenance for %s: %w", sourceURL, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	if len(rows) > 1 {
		matches := make([]Record, len(rows))
		for i, row := range rows {
			matches[i] = *fromRow(row)
		}
		warnDuplicates(ctx, sourceURL, matches)
	}
	return fromRow(rows[0]), nil
}

// FindByLocalFormID implements Store
func (s *DBStore) FindByLocalFormID(ctx context.Context, localFormID string) (*Record, error) {
	row, err := s.queries.GetProvenance(ctx, localFormID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load provenance for %s: %w", localFormID, err)
	}
	return fromRow(row), nil
}

// ListAll implements Store
func (s *DBStore) ListAll(ctx context.Context) ([]*Record, error) {
	rows, err := s.queries.ListProvenance(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list provenance: %w", err)
	}

	out := make([]*Record, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
	}
	return out, nil
}

// Delete implements Store
func (s *DBStore) Delete(ctx context.Context, localFormID string) error {
	if err := s.queries.DeleteProvenance(ctx, localFormID); err != nil {
		return fmt.Errorf("failed to delete provenance for %s: %w", localFormID, err)
	}
	return nil
}

func fromRow(row sqlc.WebformProvenance) *Record {
	return &Record{
		LocalFormID: row.WebformID,
		SourceURL:   row.SourceUrl,
		RawSource:   row.Source,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}
