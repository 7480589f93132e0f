package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/catalogcache"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/importer"
	"github.com/stacklok/formsync-server/internal/otel"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/settings"
)

// TracerName is the name of the service tracer
const TracerName = "github.com/stacklok/formsync-server/service"

// AvailableLister lists remote catalog entries
type AvailableLister interface {
	ListAvailable(ctx context.Context, sources []string, ttl time.Duration) ([]catalog.Entry, error)
	GetOne(ctx context.Context, sources []string, ttl time.Duration, url string) (*catalog.Entry, error)
}

// FormImporter imports a single form
type FormImporter interface {
	Import(ctx context.Context, url string) (*importer.Result, error)
}

// URLLocker serializes work on a source URL
type URLLocker interface {
	Lock(ctx context.Context, url string) (func(), error)
}

type formSyncService struct {
	forms      forms.Storage
	provenance provenance.Store
	settings   settings.Store
	available  AvailableLister
	importer   FormImporter
	locker     URLLocker
	clock      clock.PassiveClock
	ready      func(ctx context.Context) error
	tracer     trace.Tracer
}

var _ FormSyncService = (*formSyncService)(nil)

// ServiceOption configures the service
type ServiceOption func(*formSyncService)

// WithFormStorage sets the local form storage. Deletes through it should fire
// the provenance deletion hook (see forms.WithDeletionHooks).
func WithFormStorage(s forms.Storage) ServiceOption {
	return func(svc *formSyncService) { svc.forms = s }
}

// WithProvenanceStore sets the provenance store
func WithProvenanceStore(s provenance.Store) ServiceOption {
	return func(svc *formSyncService) { svc.provenance = s }
}

// WithSettingsStore sets the settings store
func WithSettingsStore(s settings.Store) ServiceOption {
	return func(svc *formSyncService) { svc.settings = s }
}

// WithAvailableLister sets the catalog cache
func WithAvailableLister(l AvailableLister) ServiceOption {
	return func(svc *formSyncService) { svc.available = l }
}

// WithImporter sets the importer
func WithImporter(im FormImporter) ServiceOption {
	return func(svc *formSyncService) { svc.importer = im }
}

// WithLocker sets the per-URL import lock
func WithLocker(l URLLocker) ServiceOption {
	return func(svc *formSyncService) { svc.locker = l }
}

// WithClock sets the clock used when sync settings change
func WithClock(clk clock.PassiveClock) ServiceOption {
	return func(svc *formSyncService) { svc.clock = clk }
}

// WithReadinessCheck sets an extra readiness probe, e.g. a database ping
func WithReadinessCheck(check func(ctx context.Context) error) ServiceOption {
	return func(svc *formSyncService) { svc.ready = check }
}

// WithTracer enables tracing
func WithTracer(tracer trace.Tracer) ServiceOption {
	return func(svc *formSyncService) { svc.tracer = tracer }
}

// New creates the form sync service
func New(opts ...ServiceOption) (FormSyncService, error) {
	svc := &formSyncService{clock: clock.RealClock{}}
	for _, opt := range opts {
		opt(svc)
	}

	switch {
	case svc.forms == nil:
		return nil, fmt.Errorf("form storage is required")
	case svc.provenance == nil:
		return nil, fmt.Errorf("provenance store is required")
	case svc.settings == nil:
		return nil, fmt.Errorf("settings store is required")
	case svc.available == nil:
		return nil, fmt.Errorf("catalog cache is required")
	case svc.importer == nil:
		return nil, fmt.Errorf("importer is required")
	case svc.locker == nil:
		return nil, fmt.Errorf("locker is required")
	}
	return svc, nil
}

func (s *formSyncService) CheckReadiness(ctx context.Context) error {
	if s.ready == nil {
		return nil
	}
	if err := s.ready(ctx); err != nil {
		return fmt.Errorf("not ready: %w", err)
	}
	return nil
}

func (s *formSyncService) ListAvailable(ctx context.Context) ([]catalog.Entry, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.ListAvailable")
	defer span.End()

	cfg, err := s.settings.Get(ctx)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrSourceCount.Int(len(cfg.Sources)))

	entries, err := s.available.ListAvailable(ctx, cfg.Sources, cfg.TTL())
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(entries)))
	return entries, nil
}

func (s *formSyncService) GetAvailable(ctx context.Context, url string) (*catalog.Entry, error) {
	cfg, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.available.GetOne(ctx, cfg.Sources, cfg.TTL(), url)
}

func (s *formSyncService) Index(ctx context.Context, opts ...Option[IndexOptions]) ([]IndexEntry, error) {
	var o IndexOptions
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}

	entries, err := s.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.provenance.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	bySource := provenance.IndexBySourceURL(records)

	out := make([]IndexEntry, 0, len(entries))
	for _, e := range entries {
		rec := bySource[e.SourceURL]
		switch {
		case o.Show == ShowImported && rec == nil:
			continue
		case o.Show == ShowNotImported && rec != nil:
			continue
		}
		out = append(out, IndexEntry{Entry: e, Imported: rec})
	}
	return out, nil
}

func (s *formSyncService) Import(ctx context.Context, url string) (*importer.Result, error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "service.Import",
		trace.WithAttributes(otel.AttrSourceURL.String(url)),
	)
	defer span.End()

	unlock, err := s.locker.Lock(ctx, url)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}
	defer unlock()

	res, err := s.importer.Import(ctx, url)
	if err != nil {
		otel.RecordError(span, err)
		slog.ErrorContext(ctx, "Import failed", "source_url", url, "error", err)
		return nil, err
	}
	return res, nil
}

func (s *formSyncService) ListImported(ctx context.Context) ([]*provenance.Record, error) {
	return s.provenance.ListAll(ctx)
}

func (s *formSyncService) FindImportedByLocalID(ctx context.Context, id string) (*provenance.Record, error) {
	return s.provenance.FindByLocalFormID(ctx, id)
}

func (s *formSyncService) ListPublished(ctx context.Context) ([]*forms.Form, error) {
	all, err := s.forms.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	published := make([]*forms.Form, 0, len(all))
	for _, f := range all {
		if f.Sync.Publish {
			published = append(published, f)
		}
	}
	return published, nil
}

func (s *formSyncService) GetPublished(ctx context.Context, id string) (*forms.Form, error) {
	f, err := s.forms.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.Sync.Publish {
		return nil, fmt.Errorf("%w: %s", ErrNotPublished, id)
	}
	return f, nil
}

func (s *formSyncService) GetForm(ctx context.Context, id string) (*forms.Form, error) {
	return s.forms.Load(ctx, id)
}

func (s *formSyncService) UpdateSyncSettings(
	ctx context.Context,
	id string,
	sync forms.SyncSettings,
) (*forms.Form, error) {
	if !forms.ValidUpdateInterval(sync.UpdateInterval) {
		return nil, fmt.Errorf("%w: unsupported update interval %d", forms.ErrInvalidField, sync.UpdateInterval)
	}
	f, err := s.forms.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Sync = sync
	f.UpdatedAt = s.clock.Now()
	if err := s.forms.Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *formSyncService) DeleteForm(ctx context.Context, id string) error {
	if err := s.forms.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Deleted form", "form_id", id)
	return nil
}

func (s *formSyncService) GetSettings(ctx context.Context) (settings.Settings, error) {
	return s.settings.Get(ctx)
}

func (s *formSyncService) SaveSettings(ctx context.Context, raw map[string]any) (settings.Settings, error) {
	resolved, err := settings.Resolve(raw)
	if err != nil {
		return settings.Settings{}, err
	}
	if err := s.settings.Save(ctx, resolved); err != nil {
		return settings.Settings{}, err
	}
	return resolved, nil
}

// IsNotFound reports whether err means the requested form, record or entry does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, forms.ErrNotFound) || errors.Is(err, provenance.ErrNotFound) || errors.Is(err, catalogcache.ErrNotFound)
}
