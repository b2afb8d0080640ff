package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope for application spans
const TracerName = "github.com/reportdeck/reportdeck"

// Tracer returns the global tracer for the application
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}

// StartSpan starts a span; the caller must End it.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, opts...)
}

// SetSpanError records err on the span and marks it failed. A nil err is ignored.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanOK marks the span successful
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// Attribute keys used on application spans
var (
	AttrExportID     = attribute.Key("export.id")
	AttrExportFormat = attribute.Key("export.format")
	AttrSectionID    = attribute.Key("section.id")
	AttrScrollOffset = attribute.Key("scroll.offset")
)

// WithExportAttributes returns span start options describing an export run
func WithExportAttributes(exportID, format string) trace.SpanStartOption {
	return trace.WithAttributes(
		AttrExportID.String(exportID),
		AttrExportFormat.String(format),
	)
}
