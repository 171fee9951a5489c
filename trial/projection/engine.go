package projection

import (
	"context"
	"errors"
	"time"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/shell"
)

const (
	defaultBatchSize    = uint(100)
	defaultPollInterval = 200 * time.Millisecond

	logMsgEventSkippedAlreadyApplied = "event already applied to projection, skipping"
	logMsgProjectionApplyFailed      = "applying event to projection failed"
	logMsgProjectionCaughtUp         = "projection caught up"

	logAttrProjection     = "projection"
	logAttrEventType      = "event_type"
	logAttrAggregateID    = "aggregate_id"
	logAttrSequence       = "sequence_number"
	logAttrGlobalPosition = "global_position"
	logAttrError          = "error"
)

var ErrNilBatchReader = errors.New("projection engine requires an event store")
var ErrNilCheckpointStore = errors.New("projection engine requires a checkpoint store")
var ErrNoProjectionsRegistered = errors.New("projection engine requires at least one projection")
var ErrDuplicateProjectionName = errors.New("a projection with this name is already registered")
var ErrInvalidBatchSize = errors.New("batch size must be greater than zero")
var ErrInvalidPollInterval = errors.New("poll interval must be greater than zero")

// BatchReader is the slice of the event store engines the projection engine
// depends on: the global, position-ordered feed of committed events.
type BatchReader interface {
	ReadBatch(ctx context.Context, afterPosition eventstore.GlobalPositionUint64, limit uint) (eventstore.StorableEvents, error)
}

// Engine drives registered projections from the event store's global feed.
//
// Each projection has its own position cursor, so a slow or failing read
// model never holds the others back. Within one projection, events are
// applied in global order, which preserves per-aggregate order.
type Engine struct {
	reader           BatchReader
	checkpoints      CheckpointStore
	projections      []Projection
	batchSize        uint
	pollInterval     time.Duration
	logger           eventstore.Logger
	contextualLogger eventstore.ContextualLogger
}

// EngineOption defines a functional option for configuring Engine.
type EngineOption func(*Engine) error

// WithBatchSize sets how many events one poll reads per projection.
func WithBatchSize(size uint) EngineOption {
	return func(e *Engine) error {
		if size == 0 {
			return ErrInvalidBatchSize
		}

		e.batchSize = size

		return nil
	}
}

// WithPollInterval sets the delay between polls when a projection is caught up.
func WithPollInterval(interval time.Duration) EngineOption {
	return func(e *Engine) error {
		if interval <= 0 {
			return ErrInvalidPollInterval
		}

		e.pollInterval = interval

		return nil
	}
}

// WithEngineLogger enables logging for the engine.
func WithEngineLogger(logger eventstore.Logger) EngineOption {
	return func(e *Engine) error {
		e.logger = logger

		return nil
	}
}

// WithEngineContextualLogger enables context-aware logging for the engine.
func WithEngineContextualLogger(logger eventstore.ContextualLogger) EngineOption {
	return func(e *Engine) error {
		e.contextualLogger = logger

		return nil
	}
}

// NewEngine creates a projection engine over the given feed and checkpoints.
func NewEngine(
	reader BatchReader,
	checkpoints CheckpointStore,
	options ...EngineOption,
) (*Engine, error) {

	if reader == nil {
		return nil, ErrNilBatchReader
	}

	if checkpoints == nil {
		return nil, ErrNilCheckpointStore
	}

	engine := &Engine{
		reader:       reader,
		checkpoints:  checkpoints,
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}

	for _, option := range options {
		if err := option(engine); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// Register adds a projection to the engine. Names must be unique because the
// checkpoint tables are keyed by them.
func (e *Engine) Register(projection Projection) error {
	for _, registered := range e.projections {
		if registered.Name() == projection.Name() {
			return ErrDuplicateProjectionName
		}
	}

	e.projections = append(e.projections, projection)

	return nil
}

// RunOnce catches every registered projection up to the head of the feed.
// It stops at the first failing projection and returns its ProjectionError,
// leaving that projection's cursor on the last successfully applied event.
func (e *Engine) RunOnce(ctx context.Context) error {
	if len(e.projections) == 0 {
		return ErrNoProjectionsRegistered
	}

	for _, projection := range e.projections {
		if err := e.catchUp(ctx, projection); err != nil {
			return err
		}
	}

	return nil
}

// Run polls the feed until the context is canceled. Apply failures are logged
// and retried on the next poll instead of stopping the loop.
func (e *Engine) Run(ctx context.Context) error {
	if len(e.projections) == 0 {
		return ErrNoProjectionsRegistered
	}

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		for _, projection := range e.projections {
			if err := e.catchUp(ctx, projection); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				e.logError(ctx, logMsgProjectionApplyFailed,
					logAttrProjection, projection.Name(),
					logAttrError, err.Error())
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (e *Engine) catchUp(ctx context.Context, projection Projection) error {
	handled := make(map[string]struct{}, len(projection.Handles()))
	for _, eventType := range projection.Handles() {
		handled[eventType] = struct{}{}
	}

	for {
		position, err := e.checkpoints.LoadPosition(ctx, projection.Name())
		if err != nil {
			return err
		}

		batch, err := e.reader.ReadBatch(ctx, position, e.batchSize)
		if err != nil {
			return err
		}

		if len(batch) == 0 {
			return nil
		}

		for _, storableEvent := range batch {
			if _, isHandled := handled[storableEvent.EventType]; isHandled {
				if err := e.applyOnce(ctx, projection, storableEvent); err != nil {
					return err
				}
			}

			if err := e.checkpoints.SavePosition(ctx, projection.Name(), storableEvent.GlobalPosition); err != nil {
				return err
			}
		}

		if uint(len(batch)) < e.batchSize {
			e.logDebug(ctx, logMsgProjectionCaughtUp, logAttrProjection, projection.Name())

			return nil
		}
	}
}

// applyOnce applies one event unless the sequence checkpoint shows it was
// already applied, which happens when a crash hit between applying the event
// and saving the position cursor.
func (e *Engine) applyOnce(ctx context.Context, projection Projection, storableEvent eventstore.StorableEvent) error {
	lastSequence, err := e.checkpoints.LastSequence(ctx, projection.Name(), storableEvent.AggregateID)
	if err != nil {
		return err
	}

	if storableEvent.SequenceNumber <= lastSequence {
		e.logInfo(ctx, logMsgEventSkippedAlreadyApplied,
			logAttrProjection, projection.Name(),
			logAttrEventType, storableEvent.EventType,
			logAttrAggregateID, storableEvent.AggregateID,
			logAttrSequence, storableEvent.SequenceNumber)

		return nil
	}

	domainEvent, err := shell.DomainEventFrom(storableEvent)
	if err != nil {
		return &ProjectionError{
			Projection:     projection.Name(),
			EventType:      storableEvent.EventType,
			AggregateID:    storableEvent.AggregateID,
			GlobalPosition: storableEvent.GlobalPosition,
			Cause:          err,
		}
	}

	if err := projection.Apply(ctx, domainEvent); err != nil {
		return &ProjectionError{
			Projection:     projection.Name(),
			EventType:      storableEvent.EventType,
			AggregateID:    storableEvent.AggregateID,
			GlobalPosition: storableEvent.GlobalPosition,
			Cause:          err,
		}
	}

	return e.checkpoints.SaveSequence(ctx, projection.Name(), storableEvent.AggregateID, storableEvent.SequenceNumber)
}

func (e *Engine) logDebug(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.DebugContext(ctx, msg, args...)

		return
	}

	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}

func (e *Engine) logInfo(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.InfoContext(ctx, msg, args...)

		return
	}

	if e.logger != nil {
		e.logger.Info(msg, args...)
	}
}

func (e *Engine) logError(ctx context.Context, msg string, args ...any) {
	if e.contextualLogger != nil {
		e.contextualLogger.ErrorContext(ctx, msg, args...)

		return
	}

	if e.logger != nil {
		e.logger.Error(msg, args...)
	}
}
