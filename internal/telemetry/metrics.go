// Package telemetry provides OpenTelemetry instrumentation for the form sync server.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// ImportMetricsMeterName is the name used for the import metrics meter
	ImportMetricsMeterName = "github.com/stacklok/formsync-server/import"

	// CatalogMetricsMeterName is the name used for the catalog cache metrics meter
	CatalogMetricsMeterName = "github.com/stacklok/formsync-server/catalog"
)

// ImportMetrics holds the OpenTelemetry instruments for form imports
type ImportMetrics struct {
	importDuration metric.Float64Histogram
	importsTotal   metric.Int64Counter
}

// NewImportMetrics creates a new ImportMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewImportMetrics(provider metric.MeterProvider) (*ImportMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(ImportMetricsMeterName)

	importDuration, err := meter.Float64Histogram(
		"formsync_import_duration_seconds",
		metric.WithDescription("Duration of single-form imports in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	importsTotal, err := meter.Int64Counter(
		"formsync_imports_total",
		metric.WithDescription("Number of import attempts by outcome"),
		metric.WithUnit("{import}"),
	)
	if err != nil {
		return nil, err
	}

	return &ImportMetrics{
		importDuration: importDuration,
		importsTotal:   importsTotal,
	}, nil
}

// RecordImport records one import attempt. phase is the last phase reached
// ("done" on success).
func (m *ImportMetrics) RecordImport(ctx context.Context, phase string, duration time.Duration, success bool) {
	if m == nil || m.importDuration == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.Bool("success", success),
	)
	m.importDuration.Record(ctx, duration.Seconds(), attrs)
	m.importsTotal.Add(ctx, 1, attrs)
}

// CatalogMetrics holds the OpenTelemetry instruments for the catalog cache
type CatalogMetrics struct {
	fetchDuration metric.Float64Histogram
	cacheLookups  metric.Int64Counter
	entriesTotal  metric.Int64Gauge
}

// NewCatalogMetrics creates a new CatalogMetrics instance with the given meter provider.
// If provider is nil, it returns nil (no-op metrics).
func NewCatalogMetrics(provider metric.MeterProvider) (*CatalogMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CatalogMetricsMeterName)

	fetchDuration, err := meter.Float64Histogram(
		"formsync_catalog_fetch_duration_seconds",
		metric.WithDescription("Duration of remote catalog listing fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"formsync_catalog_cache_lookups_total",
		metric.WithDescription("Catalog cache lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	entriesTotal, err := meter.Int64Gauge(
		"formsync_catalog_entries",
		metric.WithDescription("Number of entries in the last catalog listing"),
		metric.WithUnit("{form}"),
	)
	if err != nil {
		return nil, err
	}

	return &CatalogMetrics{
		fetchDuration: fetchDuration,
		cacheLookups:  cacheLookups,
		entriesTotal:  entriesTotal,
	}, nil
}

// RecordFetch records the fetch of one source listing
func (m *CatalogMetrics) RecordFetch(ctx context.Context, duration time.Duration, success bool) {
	if m == nil || m.fetchDuration == nil {
		return
	}
	m.fetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
}

// RecordLookup records a cache lookup; result is "hit", "miss" or "bypass"
func (m *CatalogMetrics) RecordLookup(ctx context.Context, result string) {
	if m == nil || m.cacheLookups == nil {
		return
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// RecordEntries records the size of a listing
func (m *CatalogMetrics) RecordEntries(ctx context.Context, count int64) {
	if m == nil || m.entriesTotal == nil {
		return
	}
	m.entriesTotal.Record(ctx, count)
}
