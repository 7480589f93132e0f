// Package importer materializes a single remote form locally and records
// where it came from.
//
// An import runs fetching, parsing, resolving the local id, upserting the
// form and recording provenance strictly in that order. Callers importing the
// same source URL concurrently must serialize those calls themselves.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/stacklok/formsync-server/internal/allocator"
	"github.com/stacklok/formsync-server/internal/catalog"
	"github.com/stacklok/formsync-server/internal/forms"
	"github.com/stacklok/formsync-server/internal/httpclient"
	"github.com/stacklok/formsync-server/internal/otel"
	"github.com/stacklok/formsync-server/internal/provenance"
	"github.com/stacklok/formsync-server/internal/telemetry"
)

// TracerName is the name of the importer tracer
const TracerName = "github.com/stacklok/formsync-server/importer"

// Result is a successfully imported form
type Result struct {
	Form   *forms.Form
	Record *provenance.Record

	// Created is true when the import created the local form
	Created bool
}

// Importer runs imports against a unit of work
type Importer struct {
	client    httpclient.Client
	uow       UnitOfWork
	clock     clock.PassiveClock
	allocOpts []allocator.Option
	tracer    trace.Tracer
	metrics   *telemetry.ImportMetrics
}

// Option configures an Importer
type Option func(*Importer)

// WithClock sets the clock stamping forms and provenance records
func WithClock(clk clock.PassiveClock) Option {
	return func(im *Importer) {
		im.clock = clk
	}
}

// WithAllocatorOptions configures identifier allocation for first-time imports
func WithAllocatorOptions(opts ...allocator.Option) Option {
	return func(im *Importer) {
		im.allocOpts = append(im.allocOpts, opts...)
	}
}

// WithTracer enables tracing of imports
func WithTracer(tracer trace.Tracer) Option {
	return func(im *Importer) {
		im.tracer = tracer
	}
}

// WithMetrics sets the metrics recorder; nil disables metrics
func WithMetrics(m *telemetry.ImportMetrics) Option {
	return func(im *Importer) {
		im.metrics = m
	}
}

// New creates an Importer fetching with client and persisting through uow
func New(client httpclient.Client, uow UnitOfWork, opts ...Option) *Importer {
	im := &Importer{
		client: client,
		uow:    uow,
		clock:  clock.RealClock{},
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Import fetches the form document at sourceURL and upserts it locally.
// Failures are returned as *Error.
func (im *Importer) Import(ctx context.Context, sourceURL string) (*Result, error) {
	ctx, span := otel.StartSpan(ctx, im.tracer, "importer.Import",
		trace.WithAttributes(otel.AttrSourceURL.String(sourceURL)),
	)
	defer span.End()

	started := time.Now()
	phase := PhaseFetching
	res, err := im.run(ctx, sourceURL, &phase)
	if err != nil {
		span.SetAttributes(otel.AttrImportPhase.String(string(phase)))
		otel.RecordError(span, err)
		im.metrics.RecordImport(ctx, string(phase), time.Since(started), false)
		return nil, err
	}

	span.SetAttributes(
		otel.AttrFormID.String(res.Form.ID),
		otel.AttrFormCreated.Bool(res.Created),
	)
	im.metrics.RecordImport(ctx, string(PhaseDone), time.Since(started), true)
	slog.InfoContext(ctx, "Imported form",
		"source_url", sourceURL,
		"form_id", res.Form.ID,
		"created", res.Created,
	)
	return res, nil
}

func (im *Importer) run(ctx context.Context, sourceURL string, phase *Phase) (*Result, error) {
	body, err := im.client.Get(ctx, sourceURL)
	if err != nil {
		return nil, failed(*phase, sourceURL, fmt.Errorf("%w: %w", ErrFetch, err))
	}

	*phase = PhaseParsing
	remote, err := catalog.DecodeForm(body, sourceURL)
	if err != nil {
		return nil, failed(*phase, sourceURL, err)
	}
	attrs, err := attributesOf(remote)
	if err != nil {
		return nil, failed(*phase, sourceURL, err)
	}

	// One clock read stamps everything this import writes.
	now := im.clock.Now()

	var res *Result
	err = im.uow.Do(ctx, func(ctx context.Context, fs forms.Storage, ps provenance.Store) error {
		*phase = PhaseResolvingID
		localID, err := im.resolveLocalID(ctx, fs, ps, remote.RemoteID, sourceURL)
		if err != nil {
			return err
		}

		*phase = PhaseUpserting
		form, err := fs.Load(ctx, localID)
		switch {
		case errors.Is(err, forms.ErrNotFound):
			form = forms.New(localID)
			form.CreatedAt = now
		case err != nil:
			return err
		}
		created := form.IsNew()
		if err := apply(form, attrs); err != nil {
			return err
		}
		form.UpdatedAt = now
		if err := fs.Save(ctx, form); err != nil {
			return err
		}

		*phase = PhaseRecordingProvenance
		rec, err := ps.RecordImport(ctx, localID, sourceURL, remote.Raw, now)
		if err != nil {
			return err
		}

		res = &Result{Form: form, Record: rec, Created: created}
		return nil
	})
	if err != nil {
		return nil, failed(*phase, sourceURL, err)
	}
	*phase = PhaseDone
	return res, nil
}

// resolveLocalID reuses the id already linked to sourceURL and only allocates
// for first-time imports.
func (im *Importer) resolveLocalID(
	ctx context.Context,
	fs forms.Storage,
	ps provenance.Store,
	remoteID, sourceURL string,
) (string, error) {
	rec, err := ps.FindBySourceURL(ctx, sourceURL)
	if err == nil {
		return rec.LocalFormID, nil
	}
	if !errors.Is(err, provenance.ErrNotFound) {
		return "", err
	}
	return allocator.New(fs, ps, im.allocOpts...).ResolveLocalID(ctx, remoteID, sourceURL)
}

// attributesOf returns the attributes to write onto the local form, with
// elements transcoded to YAML. A remote value the form cannot hold is a parse error.
func attributesOf(remote *catalog.RemoteForm) (map[string]any, error) {
	attrs := make(map[string]any, len(remote.Attributes))
	for k, v := range remote.Attributes {
		switch k {
		case forms.FieldID, forms.FieldUUID, forms.FieldElements:
			continue
		}
		attrs[k] = v
	}
	if remote.HasElements() {
		elements, err := remote.ElementsYAML()
		if err != nil {
			return nil, &catalog.ParseError{Reason: "invalid elements", Err: err}
		}
		attrs[forms.FieldElements] = elements
	}

	if err := apply(forms.New(remote.RemoteID), attrs); err != nil {
		return nil, &catalog.ParseError{Reason: "invalid attribute", Err: err}
	}
	return attrs, nil
}

func apply(f *forms.Form, attrs map[string]any) error {
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		if err := f.Set(k, attrs[k]); err != nil {
			return err
		}
	}
	return nil
}
