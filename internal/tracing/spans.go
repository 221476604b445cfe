package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrRunID     = "run.id"
	AttrCommand   = "cli.command"
	AttrDataset   = "dataset.name"
	AttrDatatype  = "datatype.name"
	AttrPath      = "datatype.path"
	AttrOverwrite = "registry.overwrite"
	AttrCreated   = "dataset.created"
	AttrCount     = "result.count"
)

// SpanPrefixRegistry prefixes registry operation span names, e.g. "registry.add".
const SpanPrefixRegistry = "registry."

// Start opens an internal span named name. A nil tracer yields a no-op span.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// Finish records err (if any) as the span outcome and ends the span.
func Finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
