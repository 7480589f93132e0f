// Package provenance records which local forms were imported from a remote
// catalog, from where, and when.
//
// A form is remote-managed if and only if it has a Record. The importer is the
// only writer; every other component reads through Store.
package provenance

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=provenance.go Store

// ErrNotFound is returned when no record matches a lookup
var ErrNotFound = errors.New("provenance record not found")

// Record links a local form to the remote document it was imported from
type Record struct {
	LocalFormID string
	SourceURL   string

	// RawSource is the verbatim fetched document
	RawSource string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the durable provenance table
type Store interface {
	// RecordImport inserts a record with CreatedAt = UpdatedAt = now, or
	// updates SourceURL, RawSource and UpdatedAt of an existing one.
	RecordImport(ctx context.Context, localFormID, sourceURL, rawSource string, now time.Time) (*Record, error)

	// FindBySourceURL returns the record for sourceURL, or ErrNotFound. When
	// several records share the URL the one with the lowest local id wins.
	FindBySourceURL(ctx context.Context, sourceURL string) (*Record, error)

	// FindByLocalFormID returns the record for a local form, or ErrNotFound
	FindByLocalFormID(ctx context.Context, localFormID string) (*Record, error)

	// ListAll returns every record ordered by local id
	ListAll(ctx context.Context) ([]*Record, error)

	// Delete removes the record of a local form. Deleting nothing is not an error.
	Delete(ctx context.Context, localFormID string) error
}

// IndexBySourceURL keys records by source URL. The first record for a URL wins,
// which with ListAll ordering is the lowest local id.
func IndexBySourceURL(records []*Record) map[string]*Record {
	idx := make(map[string]*Record, len(records))
	for _, r := range records {
		if _, ok := idx[r.SourceURL]; !ok {
			idx[r.SourceURL] = r
		}
	}
	return idx
}
