// Package otel provides span helpers shared by the form sync components.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by spans across packages.
const (
	AttrFormID      = attribute.Key("form.id")
	AttrRemoteID    = attribute.Key("form.remote_id")
	AttrSourceURL   = attribute.Key("source.url")
	AttrSourceCount = attribute.Key("source.count")
	AttrImportPhase = attribute.Key("import.phase")
	AttrFormCreated = attribute.Key("form.created")
	AttrResultCount = attribute.Key("result.count")
)

// StartSpan starts a new span if the tracer is non-nil, otherwise returns a no-op span.
// This provides graceful degradation when tracing is disabled.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError records err on span with a generic status description; the
// error itself is kept in the span event. Nil spans and errors are ignored.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}
