package shell

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
)

// ErrNilEventStore is returned when a CommandProcessor is built without a store.
var ErrNilEventStore = errors.New("event store must not be nil")

// EventStore is the slice of the engine API the command processor needs.
// All engines (Postgres, SQLite, in-memory) satisfy it.
type EventStore interface {
	ReadStream(ctx context.Context, aggregateID string) (eventstore.StorableEvents, eventstore.StreamVersionUint, error)
	Append(
		ctx context.Context,
		aggregateID string,
		expectedVersion eventstore.StreamVersionUint,
		event eventstore.StorableEvent,
		additionalEvents ...eventstore.StorableEvent,
	) (eventstore.StreamVersionUint, error)
}

// DecideFromHistory replays an aggregate's history and decides the outcome of
// one command. Implementations live in the command packages and must be pure:
// the processor may call them multiple times when appends race.
type DecideFromHistory func(history core.DomainEvents) (core.DecisionResult, error)

// CommandProcessor executes commands against aggregate streams with
// optimistic concurrency control.
//
// One Execute call runs the read-decide-append cycle, retrying the whole
// cycle with exponential backoff when a concurrent writer wins the version
// race. The decision function sees fresh history on every attempt.
type CommandProcessor struct {
	eventStore       EventStore
	publisher        EventPublisher
	logger           Logger
	contextualLogger ContextualLogger
	metrics          MetricsCollector
	tracing          TracingCollector
	retryOptions     []RetryOption
}

// ProcessorOption configures a CommandProcessor.
type ProcessorOption func(*CommandProcessor)

// WithPublisher attaches an event publisher notified after successful appends.
func WithPublisher(publisher EventPublisher) ProcessorOption {
	return func(p *CommandProcessor) {
		p.publisher = publisher
	}
}

// WithProcessorLogger attaches a logger.
func WithProcessorLogger(logger Logger) ProcessorOption {
	return func(p *CommandProcessor) {
		p.logger = logger
	}
}

// WithProcessorContextualLogger attaches a context-aware logger.
func WithProcessorContextualLogger(logger ContextualLogger) ProcessorOption {
	return func(p *CommandProcessor) {
		p.contextualLogger = logger
	}
}

// WithProcessorMetrics attaches a metrics collector.
func WithProcessorMetrics(collector MetricsCollector) ProcessorOption {
	return func(p *CommandProcessor) {
		p.metrics = collector
	}
}

// WithProcessorTracing attaches a tracing collector.
func WithProcessorTracing(tracing TracingCollector) ProcessorOption {
	return func(p *CommandProcessor) {
		p.tracing = tracing
	}
}

// WithRetryOptions overrides the default retry behavior for all commands
// executed by this processor.
func WithRetryOptions(options ...RetryOption) ProcessorOption {
	return func(p *CommandProcessor) {
		p.retryOptions = options
	}
}

// NewCommandProcessor creates a CommandProcessor for the given event store.
func NewCommandProcessor(store EventStore, options ...ProcessorOption) (*CommandProcessor, error) {
	if store == nil {
		return nil, ErrNilEventStore
	}

	processor := &CommandProcessor{eventStore: store}

	for _, option := range options {
		option(processor)
	}

	return processor, nil
}

// Execute runs one command against the aggregate's stream.
//
// Per attempt it reads the full stream, maps it to domain events, lets the
// decision function decide, and conditionally appends the resulting events at
// the version it read. A losing version race surfaces as
// ErrConcurrencyConflict and triggers a retry with fresh history; all other
// errors fail fast.
//
// Business rejections come back as the decision's error (a ValidationError),
// idempotent decisions come back as a success result with Idempotent set.
func (p *CommandProcessor) Execute(
	ctx context.Context,
	aggregateID uuid.UUID,
	commandType string,
	metadata EventMetadata,
	decide DecideFromHistory,
) (HandlerResult, error) {

	start := time.Now()

	ctx, span := StartCommandSpan(ctx, p.tracing, commandType, aggregateID.String())
	LogCommandStart(ctx, p.logger, p.contextualLogger, commandType)

	var idempotent bool
	var appendedEvents core.DomainEvents

	retryMetrics, err := RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
		idempotent = false
		appendedEvents = nil

		return p.executeOnce(ctx, aggregateID, metadata, decide, &idempotent, &appendedEvents)
	}, p.retryOptionsFor(commandType)...)

	duration := time.Since(start)

	if err != nil {
		status := ClassifyErrorOutcome(err)
		LogCommandError(ctx, p.logger, p.contextualLogger, commandType, err, duration)
		RecordCommandMetrics(ctx, p.metrics, commandType, status, duration)
		FinishCommandSpan(p.tracing, span, status, duration)

		return NewErrorResult(retryMetrics), err
	}

	status := StatusSuccess
	if idempotent {
		status = StatusIdempotent
	}

	LogCommandSuccess(ctx, p.logger, p.contextualLogger, commandType, status, duration)
	RecordCommandMetrics(ctx, p.metrics, commandType, status, duration)
	FinishCommandSpan(p.tracing, span, status, duration)

	if p.publisher != nil && len(appendedEvents) > 0 {
		p.publisher.Publish(ctx, appendedEvents)
	}

	if idempotent {
		return NewIdempotentResult(retryMetrics), nil
	}

	return NewSuccessResult(retryMetrics), nil
}

// executeOnce is a single read-decide-append cycle.
func (p *CommandProcessor) executeOnce(
	ctx context.Context,
	aggregateID uuid.UUID,
	metadata EventMetadata,
	decide DecideFromHistory,
	idempotent *bool,
	appendedEvents *core.DomainEvents,
) error {

	storableEvents, streamVersion, err := p.eventStore.ReadStream(ctx, aggregateID.String())
	if err != nil {
		return err
	}

	history, err := DomainEventsFrom(storableEvents)
	if err != nil {
		return err
	}

	result, err := decide(history)
	if err != nil {
		return err
	}

	if decisionErr := result.HasError(); decisionErr != nil {
		return decisionErr
	}

	if !result.HasEventsToAppend() {
		*idempotent = true

		return nil
	}

	toAppend := make(eventstore.StorableEvents, 0, len(result.Events))
	for _, event := range result.Events {
		// each stored event gets its own message id, caused by the command
		eventMetadata := metadata
		eventMetadata.MessageID = uuid.New().String()
		eventMetadata.CausationID = metadata.MessageID

		storableEvent, buildErr := StorableEventFrom(event, eventMetadata)
		if buildErr != nil {
			return buildErr
		}

		toAppend = append(toAppend, storableEvent)
	}

	if _, err = p.eventStore.Append(ctx, aggregateID.String(), streamVersion, toAppend[0], toAppend[1:]...); err != nil {
		return err
	}

	*appendedEvents = result.Events

	return nil
}

func (p *CommandProcessor) retryOptionsFor(commandType string) []RetryOption {
	options := make([]RetryOption, 0, len(p.retryOptions)+1)
	options = append(options, p.retryOptions...)

	if p.metrics != nil {
		options = append(options, WithMetrics(p.metrics, commandType))
	}

	return options
}
