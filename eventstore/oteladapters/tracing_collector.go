package oteladapters

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinforge/trialcore/eventstore"
)

// TracingCollector implements eventstore.TracingCollector on the OpenTelemetry
// tracing API, creating one span per engine operation.
type TracingCollector struct {
	tracer trace.Tracer
}

// NewTracingCollector creates a collector on the given tracer, which should
// come from the application's TracerProvider.
func NewTracingCollector(tracer trace.Tracer) *TracingCollector {
	return &TracingCollector{tracer: tracer}
}

// StartSpan starts an OpenTelemetry span with the given name and attributes
// and returns the span-carrying context plus a handle to finish the span with.
func (t *TracingCollector) StartSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	spanOptions := make([]trace.SpanStartOption, 0, len(attrs))
	for key, value := range attrs {
		spanOptions = append(spanOptions, trace.WithAttributes(attribute.String(key, value)))
	}

	spanCtx, span := t.tracer.Start(ctx, name, spanOptions...)

	return spanCtx, &spanHandle{span: span}
}

// FinishSpan sets the final status and attributes on the span and ends it.
func (t *TracingCollector) FinishSpan(spanCtx eventstore.SpanContext, status string, attrs map[string]string) {
	handle, ok := spanCtx.(*spanHandle)
	if !ok {
		return
	}

	for key, value := range attrs {
		handle.span.SetAttributes(attribute.String(key, value))
	}

	handle.setSpanStatus(status)
	handle.span.End()
}

var _ eventstore.TracingCollector = (*TracingCollector)(nil)

// spanHandle implements eventstore.SpanContext by wrapping an OpenTelemetry span.
type spanHandle struct {
	span trace.Span
}

// SetStatus maps the status string onto the span's OpenTelemetry status code.
func (s *spanHandle) SetStatus(status string) {
	s.setSpanStatus(status)
}

// AddAttribute adds a string attribute to the span.
func (s *spanHandle) AddAttribute(key, value string) {
	s.span.SetAttributes(attribute.String(key, value))
}

func (s *spanHandle) setSpanStatus(status string) {
	switch status {
	case "ok", "success", "completed":
		s.span.SetStatus(codes.Ok, "")
	case "error", "failed", "failure":
		s.span.SetStatus(codes.Error, "operation failed")
	case "cancelled", "canceled":
		s.span.SetStatus(codes.Error, "operation cancelled")
	case "timeout":
		s.span.SetStatus(codes.Error, "operation timed out")
	case "conflict":
		s.span.SetStatus(codes.Error, "concurrency conflict")
	default:
		s.span.SetAttributes(attribute.String("status", status))
	}
}

var _ eventstore.SpanContext = (*spanHandle)(nil)
