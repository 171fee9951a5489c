package shell

import (
	"context"
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
)

const (
	logMsgSnapshotUnusable     = "stored snapshot unusable, replaying full stream"
	logMsgSnapshotSaveFailed   = "saving snapshot failed, continuing without"
	logMsgSnapshotDeleteFailed = "deleting unusable snapshot failed"
)

var (
	// ErrNilSnapshotStore is returned when a SnapshotStateReader is built without a store.
	ErrNilSnapshotStore = errors.New("snapshot-capable event store must not be nil")

	// ErrNilFoldFunc is returned when a SnapshotStateReader is built without a fold function.
	ErrNilFoldFunc = errors.New("fold function must not be nil")

	// ErrEmptySnapshotAggregateType is returned when a SnapshotStateReader is built without an aggregate type.
	ErrEmptySnapshotAggregateType = errors.New("aggregate type must not be empty")
)

// SnapshotCapableEventStore is the slice of the engine API needed for
// snapshot-accelerated state reads. All engines (Postgres, SQLite, in-memory)
// satisfy it.
type SnapshotCapableEventStore interface {
	ReadStreamFrom(
		ctx context.Context,
		aggregateID string,
		afterSequence eventstore.StreamVersionUint,
	) (eventstore.StorableEvents, eventstore.StreamVersionUint, error)
	SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error
	LoadSnapshot(ctx context.Context, aggregateID string) (eventstore.Snapshot, error)
	DeleteSnapshot(ctx context.Context, aggregateID string) error
}

// FoldFunc folds additional history onto an already replayed state. The core
// package provides one per aggregate (core.FoldStudy, core.FoldStudyDesign, ...).
type FoldFunc[S any] func(state S, history core.DomainEvents) (S, error)

// SnapshotStateReader reads an aggregate's current state, resuming replay
// from a stored snapshot's SequenceNumber+1 instead of event 1.
//
// The event log stays authoritative: an unusable snapshot is deleted and the
// read falls back to a full replay, and snapshot save failures never fail the
// read. After every read the reader refreshes the snapshot so the next read
// starts from the latest folded state.
type SnapshotStateReader[S any] struct {
	store            SnapshotCapableEventStore
	aggregateType    string
	fold             FoldFunc[S]
	logger           Logger
	contextualLogger ContextualLogger
}

// SnapshotReaderOption configures a SnapshotStateReader.
type SnapshotReaderOption[S any] func(*SnapshotStateReader[S])

// WithSnapshotReaderLogger attaches a logger.
func WithSnapshotReaderLogger[S any](logger Logger) SnapshotReaderOption[S] {
	return func(r *SnapshotStateReader[S]) {
		r.logger = logger
	}
}

// WithSnapshotReaderContextualLogger attaches a context-aware logger.
func WithSnapshotReaderContextualLogger[S any](logger ContextualLogger) SnapshotReaderOption[S] {
	return func(r *SnapshotStateReader[S]) {
		r.contextualLogger = logger
	}
}

// NewSnapshotStateReader creates a reader for one aggregate type. The
// aggregateType tags the stored snapshots (e.g. "StudyDesign").
func NewSnapshotStateReader[S any](
	store SnapshotCapableEventStore,
	aggregateType string,
	fold FoldFunc[S],
	options ...SnapshotReaderOption[S],
) (*SnapshotStateReader[S], error) {

	if store == nil {
		return nil, ErrNilSnapshotStore
	}

	if aggregateType == "" {
		return nil, ErrEmptySnapshotAggregateType
	}

	if fold == nil {
		return nil, ErrNilFoldFunc
	}

	reader := &SnapshotStateReader[S]{
		store:         store,
		aggregateType: aggregateType,
		fold:          fold,
	}

	for _, option := range options {
		option(reader)
	}

	return reader, nil
}

// Read returns the aggregate's current state and stream version.
//
// With a usable snapshot it unmarshals the cached state and folds only the
// events appended after the snapshot's sequence number. Without one (or when
// the stored snapshot cannot be used) it replays the full stream. Either way
// the snapshot is refreshed afterwards when the stream has grown.
func (r *SnapshotStateReader[S]) Read(ctx context.Context, aggregateID uuid.UUID) (
	S,
	eventstore.StreamVersionUint,
	error,
) {

	var zero S

	if aggregateID == uuid.Nil {
		return zero, 0, eventstore.ErrEmptyAggregateID
	}

	snapshot, loadErr := r.store.LoadSnapshot(ctx, aggregateID.String())
	if loadErr == nil {
		state, version, readErr := r.readFromSnapshot(ctx, aggregateID.String(), snapshot)
		if readErr == nil {
			return state, version, nil
		}

		r.logWarning(ctx, logMsgSnapshotUnusable, aggregateID.String(), readErr)

		if deleteErr := r.store.DeleteSnapshot(ctx, aggregateID.String()); deleteErr != nil {
			r.logWarning(ctx, logMsgSnapshotDeleteFailed, aggregateID.String(), deleteErr)
		}
	} else if !errors.Is(loadErr, eventstore.ErrNoSnapshotFound) {
		r.logWarning(ctx, logMsgSnapshotUnusable, aggregateID.String(), loadErr)
	}

	return r.readFull(ctx, aggregateID.String())
}

func (r *SnapshotStateReader[S]) readFromSnapshot(ctx context.Context, aggregateID string, snapshot eventstore.Snapshot) (
	S,
	eventstore.StreamVersionUint,
	error,
) {

	var zero S

	state := new(S)
	if err := jsoniter.ConfigFastest.Unmarshal(snapshot.Data, state); err != nil {
		return zero, 0, errors.Join(eventstore.ErrInvalidSnapshotJSON, err)
	}

	storableEvents, version, readErr := r.store.ReadStreamFrom(ctx, aggregateID, snapshot.SequenceNumber)
	if readErr != nil {
		return zero, 0, readErr
	}

	history, mapErr := DomainEventsFrom(storableEvents)
	if mapErr != nil {
		return zero, 0, mapErr
	}

	folded, foldErr := r.fold(*state, history)
	if foldErr != nil {
		return zero, 0, foldErr
	}

	if len(history) > 0 {
		r.refreshSnapshot(ctx, aggregateID, version, folded)
	}

	return folded, version, nil
}

func (r *SnapshotStateReader[S]) readFull(ctx context.Context, aggregateID string) (
	S,
	eventstore.StreamVersionUint,
	error,
) {

	var zero S

	storableEvents, version, readErr := r.store.ReadStreamFrom(ctx, aggregateID, 0)
	if readErr != nil {
		return zero, 0, readErr
	}

	history, mapErr := DomainEventsFrom(storableEvents)
	if mapErr != nil {
		return zero, 0, mapErr
	}

	state, foldErr := r.fold(zero, history)
	if foldErr != nil {
		return zero, 0, foldErr
	}

	if version > 0 {
		r.refreshSnapshot(ctx, aggregateID, version, state)
	}

	return state, version, nil
}

// refreshSnapshot stores the folded state for the next read. Failures are
// logged and swallowed: the read already succeeded from the event log.
func (r *SnapshotStateReader[S]) refreshSnapshot(
	ctx context.Context,
	aggregateID string,
	version eventstore.StreamVersionUint,
	state S,
) {

	data, marshalErr := jsoniter.ConfigFastest.Marshal(state)
	if marshalErr != nil {
		r.logWarning(ctx, logMsgSnapshotSaveFailed, aggregateID, marshalErr)
		return
	}

	snapshot, buildErr := eventstore.BuildSnapshot(aggregateID, r.aggregateType, version, data)
	if buildErr != nil {
		r.logWarning(ctx, logMsgSnapshotSaveFailed, aggregateID, buildErr)
		return
	}

	if saveErr := r.store.SaveSnapshot(ctx, snapshot); saveErr != nil {
		r.logWarning(ctx, logMsgSnapshotSaveFailed, aggregateID, saveErr)
	}
}

func (r *SnapshotStateReader[S]) logWarning(ctx context.Context, message, aggregateID string, err error) {
	if r.contextualLogger != nil {
		r.contextualLogger.WarnContext(ctx, message,
			LogAttrAggregateID, aggregateID, LogAttrError, err.Error())
	} else if r.logger != nil {
		r.logger.Warn(message,
			LogAttrAggregateID, aggregateID, LogAttrError, err.Error())
	}
}
