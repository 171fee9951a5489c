package shell

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
)

const (
	// CommandHandlerDurationMetric tracks command handler execution duration (OpenTelemetry-compatible).
	CommandHandlerDurationMetric = "commandhandler_handle_duration_seconds"

	// CommandHandlerCallsMetric tracks total command handler calls.
	CommandHandlerCallsMetric = "commandhandler_handle_calls_total"

	// CommandHandlerIdempotentMetric tracks idempotent operations.
	CommandHandlerIdempotentMetric = "commandhandler_idempotent_operations_total"

	// CommandHandlerCanceledMetric tracks canceled operations.
	CommandHandlerCanceledMetric = "commandhandler_canceled_operations_total"

	// CommandHandlerTimeoutMetric tracks timeout operations.
	CommandHandlerTimeoutMetric = "commandhandler_timeout_operations_total"

	// CommandHandlerConcurrencyConflictMetric tracks concurrency conflict operations.
	CommandHandlerConcurrencyConflictMetric = "commandhandler_concurrency_conflicts_total"

	// CommandHandlerRetriesMetric tracks retry attempts in command handlers.
	//
	// Labels:
	//   - command_type: Type of command being retried (e.g., "EnrollPatient")
	//   - attempt_number: Which retry attempt (1, 2, 3, 4, 5)
	//   - error_type: Category of error causing retry (e.g., "concurrency_conflict")
	CommandHandlerRetriesMetric = "commandhandler_retries_total"

	// CommandHandlerRetryDelayMetric tracks retry backoff delays in command handlers.
	CommandHandlerRetryDelayMetric = "commandhandler_retry_delay_seconds"

	// CommandHandlerMaxRetriesReachedMetric tracks when max retries are exhausted.
	CommandHandlerMaxRetriesReachedMetric = "commandhandler_max_retries_reached_total"

	// StatusSuccess indicates successful command completion.
	StatusSuccess = "success"

	// StatusError indicates a command processing error.
	StatusError = "error"

	// StatusIdempotent indicates no state change was needed.
	StatusIdempotent = "idempotent"

	// StatusRejected indicates the command was rejected by a business rule.
	StatusRejected = "rejected"

	// StatusCanceled indicates the operation was canceled due to context cancellation.
	StatusCanceled = "canceled"

	// StatusTimeout indicates the operation timed out due to context deadline exceeded.
	StatusTimeout = "timeout"

	// StatusConcurrencyConflict indicates the operation failed due to optimistic concurrency control.
	StatusConcurrencyConflict = "concurrency_conflict"

	// LogMsgCommandStarted is logged when command processing begins.
	LogMsgCommandStarted = "command handler started"

	// LogMsgCommandCompleted is logged when command processing succeeds.
	LogMsgCommandCompleted = "command handler completed"

	// LogMsgCommandFailed is logged when command processing fails.
	LogMsgCommandFailed = "command handler failed"

	// LogAttrCommandType is the log/metric attribute for the command type.
	LogAttrCommandType = "command_type"

	// LogAttrAggregateID is the log/metric attribute for the target aggregate.
	LogAttrAggregateID = "aggregate_id"

	// LogAttrStatus is the log/metric attribute for the outcome status.
	LogAttrStatus = "status"

	// LogAttrDurationMS is the log attribute for the handler duration in milliseconds.
	LogAttrDurationMS = "duration_ms"

	// LogAttrError is the log attribute for error details.
	LogAttrError = "error"

	// CommandSpanNamePrefix prefixes tracing span names for command handlers.
	CommandSpanNamePrefix = "commandhandler."
)

// Logger is the interface for structured logging in the shell.
type Logger = eventstore.Logger

// ContextualLogger is the interface for context-aware logging with trace correlation.
type ContextualLogger = eventstore.ContextualLogger

// MetricsCollector is the interface for metrics collection in the shell.
type MetricsCollector = eventstore.MetricsCollector

// ContextualMetricsCollector extends MetricsCollector with context-aware methods.
type ContextualMetricsCollector = eventstore.ContextualMetricsCollector

// TracingCollector is the interface for distributed tracing in the shell.
type TracingCollector = eventstore.TracingCollector

// SpanContext represents an active tracing span.
type SpanContext = eventstore.SpanContext

// ClassifyBusinessOutcome maps a decision's events to a status label.
func ClassifyBusinessOutcome(eventsToAppend core.DomainEvents) string {
	if len(eventsToAppend) == 0 {
		return StatusIdempotent
	}

	return StatusSuccess
}

// ClassifyErrorOutcome maps an error to a status label for metrics and spans.
func ClassifyErrorOutcome(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return StatusCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return StatusTimeout
	case errors.Is(err, eventstore.ErrConcurrencyConflict):
		return StatusConcurrencyConflict
	case core.IsValidationError(err):
		return StatusRejected
	default:
		return StatusError
	}
}

// BuildCommandLabels creates the standard label set for command handler metrics.
func BuildCommandLabels(commandType, status string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		LogAttrStatus:      status,
	}
}

// BuildRetryLabels creates the label set for retry attempt metrics.
func BuildRetryLabels(commandType string, attemptNumber int, errorType string) map[string]string {
	return map[string]string{
		LogAttrCommandType: commandType,
		"attempt_number":   strconv.Itoa(attemptNumber),
		"error_type":       errorType,
	}
}

// ToMilliseconds converts a duration to fractional milliseconds.
func ToMilliseconds(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// RecordCommandMetrics records duration and call counters for a command handler
// execution, preferring context-aware collection when available.
func RecordCommandMetrics(
	ctx context.Context,
	collector MetricsCollector,
	commandType string,
	status string,
	duration time.Duration,
) {
	if collector == nil {
		return
	}

	labels := BuildCommandLabels(commandType, status)

	if contextual, ok := collector.(ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, CommandHandlerDurationMetric, duration, labels)
		contextual.IncrementCounterContext(ctx, CommandHandlerCallsMetric, labels)
	} else {
		collector.RecordDuration(CommandHandlerDurationMetric, duration, labels)
		collector.IncrementCounter(CommandHandlerCallsMetric, labels)
	}

	if status == StatusIdempotent {
		idempotentLabels := map[string]string{LogAttrCommandType: commandType}

		if contextual, ok := collector.(ContextualMetricsCollector); ok {
			contextual.IncrementCounterContext(ctx, CommandHandlerIdempotentMetric, idempotentLabels)
		} else {
			collector.IncrementCounter(CommandHandlerIdempotentMetric, idempotentLabels)
		}
	}
}

// StartCommandSpan begins a tracing span for a command handler execution.
func StartCommandSpan(
	ctx context.Context,
	tracing TracingCollector,
	commandType string,
	aggregateID string,
) (context.Context, SpanContext) {
	if tracing == nil {
		return ctx, nil
	}

	return tracing.StartSpan(ctx, CommandSpanNamePrefix+commandType, map[string]string{
		LogAttrCommandType: commandType,
		LogAttrAggregateID: aggregateID,
	})
}

// FinishCommandSpan finishes a tracing span with the outcome status.
func FinishCommandSpan(tracing TracingCollector, span SpanContext, status string, duration time.Duration) {
	if tracing == nil || span == nil {
		return
	}

	tracing.FinishSpan(span, status, map[string]string{
		LogAttrDurationMS: formatDurationMS(duration),
	})
}

// LogCommandStart logs the beginning of command processing.
func LogCommandStart(ctx context.Context, logger Logger, contextualLogger ContextualLogger, commandType string) {
	if contextualLogger != nil {
		contextualLogger.DebugContext(ctx, LogMsgCommandStarted, LogAttrCommandType, commandType)
	} else if logger != nil {
		logger.Debug(LogMsgCommandStarted, LogAttrCommandType, commandType)
	}
}

// LogCommandSuccess logs successful command completion with its duration.
func LogCommandSuccess(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	status string,
	duration time.Duration,
) {
	if contextualLogger != nil {
		contextualLogger.InfoContext(ctx, LogMsgCommandCompleted,
			LogAttrCommandType, commandType, LogAttrStatus, status, LogAttrDurationMS, ToMilliseconds(duration))
	} else if logger != nil {
		logger.Info(LogMsgCommandCompleted,
			LogAttrCommandType, commandType, LogAttrStatus, status, LogAttrDurationMS, ToMilliseconds(duration))
	}
}

// LogCommandError logs a failed command with its error and duration.
func LogCommandError(
	ctx context.Context,
	logger Logger,
	contextualLogger ContextualLogger,
	commandType string,
	err error,
	duration time.Duration,
) {
	if contextualLogger != nil {
		contextualLogger.ErrorContext(ctx, LogMsgCommandFailed,
			LogAttrCommandType, commandType, LogAttrError, err.Error(), LogAttrDurationMS, ToMilliseconds(duration))
	} else if logger != nil {
		logger.Error(LogMsgCommandFailed,
			LogAttrCommandType, commandType, LogAttrError, err.Error(), LogAttrDurationMS, ToMilliseconds(duration))
	}
}

func formatDurationMS(duration time.Duration) string {
	return fmt.Sprintf("%.2f", ToMilliseconds(duration))
}
