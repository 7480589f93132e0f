// Package service composes the catalog cache, importer and stores into the
// operations exposed by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/settings"
)

var (
	// ErrNotPublished is returned when a form exists but is not exposed in the local catalog
	ErrNotPublished = errors.New("form is not published")
	// ErrInvalidFilter is returned for an unsupported index filter
	ErrInvalidFilter = errors.New("invalid filter")
)

// Index filters
const (
	ShowAll         = ""
	ShowImported    = "imported"
	ShowNotImported = "not-imported"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go FormSyncService

// FormSyncService defines the form sync operations
type FormSyncService interface {
	// CheckReadiness checks if the service is ready to serve requests
	CheckReadiness(ctx context.Context) error

	// ListAvailable returns the forms advertised by the configured sources
	ListAvailable(ctx context.Context) ([]catalog.Entry, error)

	// GetAvailable returns the advertised form whose URL is url
	GetAvailable(ctx context.Context, url string) (*catalog.Entry, error)

	// Index returns the advertised forms annotated with their import state
	Index(ctx context.Context, opts ...Option[IndexOptions]) ([]IndexEntry, error)

	// Import imports the form at url, serialized with other imports of the same url
	Import(ctx context.Context, url string) (*importer.Result, error)

	// ListImported returns every provenance record
	ListImported(ctx context.Context) ([]*provenance.Record, error)

	// FindImportedByLocalID returns the provenance record of a local form
	FindImportedByLocalID(ctx context.Context, id string) (*provenance.Record, error)

	// ListPublished returns the local forms exposed in the local catalog
	ListPublished(ctx context.Context) ([]*forms.Form, error)

	// GetPublished returns a published local form
	GetPublished(ctx context.Context, id string) (*forms.Form, error)

	// GetForm returns a local form regardless of its publish flag
	GetForm(ctx context.Context, id string) (*forms.Form, error)

	// UpdateSyncSettings changes the publish flag and update interval of a form
	UpdateSyncSettings(ctx context.Context, id string, sync forms.SyncSettings) (*forms.Form, error)

	// DeleteForm deletes a local form and its provenance
	DeleteForm(ctx context.Context, id string) error

	// GetSettings returns the current sync settings
	GetSettings(ctx context.Context) (settings.Settings, error)

	// SaveSettings validates and stores raw sync settings
	SaveSettings(ctx context.Context, raw map[string]any) (settings.Settings, error)
}

// IndexEntry is an advertised form and, if imported, its provenance record
type IndexEntry struct {
	Entry    catalog.Entry
	Imported *provenance.Record
}

// Option is a function that sets an option for a service operation
type Option[T IndexOptions] func(*T) error

// IndexOptions is the options for the Index operation
type IndexOptions struct {
	Show string
}

// WithShow filters the index by import state: "imported", "not-imported", or "" for all
func WithShow(show string) Option[IndexOptions] {
	return func(o *IndexOptions) error {
		switch show {
		case ShowAll, ShowImported, ShowNotImported:
			o.Show = show
			return nil
		default:
			return fmt.Errorf("%w: show must be %q or %q, got %q", ErrInvalidFilter, ShowImported, ShowNotImported, show)
		}
	}
}
