package oteladapters_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/eventstore/oteladapters"
)

// recordingHandler captures slog records for assertions.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, record)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func Test_SlogBridgeLogger_ForwardsAllLevels(t *testing.T) {
	handler := &recordingHandler{}
	logger := oteladapters.NewSlogBridgeLoggerWithHandler(handler)
	ctx := context.Background()

	logger.DebugContext(ctx, "debug message")
	logger.InfoContext(ctx, "info message", "aggregate_id", "study-1")
	logger.WarnContext(ctx, "warn message")
	logger.ErrorContext(ctx, "error message")

	require.Len(t, handler.records, 4)
	assert.Equal(t, "debug message", handler.records[0].Message)
	assert.Equal(t, slog.LevelInfo, handler.records[1].Level)
	assert.Equal(t, slog.LevelError, handler.records[3].Level)
}

func Test_MetricsCollector_WorksAgainstNoopMeter(t *testing.T) {
	collector := oteladapters.NewMetricsCollector(metricnoop.NewMeterProvider().Meter("test"))
	ctx := context.Background()
	labels := map[string]string{"status": "success"}

	// Must not panic and must satisfy both collector interfaces.
	collector.RecordDuration("eventstore.append.duration", 5*time.Millisecond, labels)
	collector.RecordDurationContext(ctx, "eventstore.append.duration", 5*time.Millisecond, labels)
	collector.IncrementCounter("eventstore.concurrency_conflicts", labels)
	collector.IncrementCounterContext(ctx, "eventstore.concurrency_conflicts", labels)
	collector.RecordValue("eventstore.open_streams", 3, nil)
	collector.RecordValueContext(ctx, "eventstore.open_streams", 3, nil)

	var _ eventstore.MetricsCollector = collector
	var _ eventstore.ContextualMetricsCollector = collector
}

func Test_TracingCollector_SpanLifecycleAgainstNoopTracer(t *testing.T) {
	collector := oteladapters.NewTracingCollector(tracenoop.NewTracerProvider().Tracer("test"))

	ctx, span := collector.StartSpan(context.Background(), "eventstore.append", map[string]string{
		"aggregate_id": "study-1",
	})

	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.AddAttribute("event_count", "1")
	span.SetStatus("success")

	collector.FinishSpan(span, "conflict", map[string]string{"rows_affected": "0"})
}

func Test_TracingCollector_FinishSpanIgnoresForeignSpanContext(t *testing.T) {
	collector := oteladapters.NewTracingCollector(tracenoop.NewTracerProvider().Tracer("test"))

	assert.NotPanics(t, func() {
		collector.FinishSpan(foreignSpan{}, "success", nil)
	})
}

type foreignSpan struct{}

func (foreignSpan) SetStatus(string)        {}
func (foreignSpan) AddAttribute(_, _ string) {}
