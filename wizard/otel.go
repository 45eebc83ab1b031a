package wizard

import (
	"context"

	"github.com/amp-labs/amp-wizard/envutil"
	"github.com/amp-labs/amp-wizard/lazy"
	"github.com/amp-labs/amp-wizard/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/amp-labs/amp-wizard/wizard"

var debugSpans = lazy.New(func() bool {
	return envutil.Bool("WIZARD_DEBUG", envutil.Default(false)).ValueOrElse(false)
})

// startRunSpan creates the root span of a run. Uses the global tracer
// provider, which the telemetry package configures.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startRunSpan(ctx context.Context, name, runID string, fields int) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "wizard.run")
	span.SetAttributes(
		attribute.String("wizard", sanitizeName(name)),
		attribute.String("run_id", runID),
		attribute.Int("fields", fields),
	)
	logSpanDebug(ctx, "wizard.run", span)

	return ctx, span
}

// startStepSpan creates a child span for one prompt.
// The caller is responsible for calling span.End().
//
//nolint:spancheck // Span lifecycle managed by caller
func startStepSpan(ctx context.Context, path string, index, current int) (context.Context, trace.Span) {
	spanName := "wizard.step." + path
	ctx, span := otel.Tracer(tracerName).Start(ctx, spanName)
	span.SetAttributes(
		attribute.String("field", path),
		attribute.Int("index", index),
		attribute.Int("step", current),
	)
	logSpanDebug(ctx, spanName, span)

	return ctx, span
}

// endSpan records the outcome and ends span.
func endSpan(span trace.Span, outcome string, err error) {
	span.SetAttributes(attribute.String("outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, outcome)
	}

	span.End()
}

// logSpanDebug logs span creation when WIZARD_DEBUG is set.
func logSpanDebug(ctx context.Context, spanName string, span trace.Span) {
	if !debugSpans.Get() {
		return
	}

	spanCtx := span.SpanContext()
	logger.Get(ctx).DebugContext(ctx, "span started",
		"span_name", spanName,
		"trace_id", spanCtx.TraceID().String(),
		"span_id", spanCtx.SpanID().String(),
	)
}
