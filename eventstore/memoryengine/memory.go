package memoryengine

import (
	"context"
	"sync"
	"time"

	"github.com/clinforge/trialcore/eventstore"
)

const (
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgStreamAlreadyInitialized = "stream already initialized, first event exists"
	logAttrAggregateID             = "aggregate_id"
	logAttrEventCount              = "event_count"
	logAttrExpectedVersion         = "expected_version"
	logAttrCurrentVersion          = "current_version"
)

// EventStore is the in-memory engine for per-aggregate event streams.
//
// The zero value is not usable; construct it with NewEventStore.
type EventStore struct {
	mu             sync.RWMutex
	streams        map[string][]eventstore.StorableEvent
	log            []eventstore.StorableEvent // append order, carries global positions
	snapshots      map[string]eventstore.Snapshot
	globalPosition eventstore.GlobalPositionUint64
	logger         eventstore.Logger
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore)

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) {
		es.logger = logger
	}
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore(options ...Option) *EventStore {
	es := &EventStore{
		streams:   make(map[string][]eventstore.StorableEvent),
		snapshots: make(map[string]eventstore.Snapshot),
	}

	for _, option := range options {
		option(es)
	}

	return es
}

// ReadStream retrieves all events of a single aggregate in sequence order and
// returns them together with the current stream version, 0 for a stream that
// does not exist yet.
func (es *EventStore) ReadStream(ctx context.Context, aggregateID string) (
	eventstore.StorableEvents,
	eventstore.StreamVersionUint,
	error,
) {

	return es.ReadStreamFrom(ctx, aggregateID, 0)
}

// ReadStreamFrom retrieves the events of a single aggregate whose sequence
// number is greater than afterSequence, in sequence order. It is the
// incremental read used when replay resumes from a snapshot.
//
// The returned version is the stream's current version: the last sequence
// number read, or afterSequence when no newer events exist.
func (es *EventStore) ReadStreamFrom(
	_ context.Context,
	aggregateID string,
	afterSequence eventstore.StreamVersionUint,
) (
	eventstore.StorableEvents,
	eventstore.StreamVersionUint,
	error,
) {

	if aggregateID == "" {
		return nil, 0, eventstore.ErrEmptyAggregateID
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	eventStream := make(eventstore.StorableEvents, 0)
	for _, event := range es.streams[aggregateID] {
		if event.SequenceNumber > afterSequence {
			eventStream = append(eventStream, event)
		}
	}

	currentVersion := afterSequence
	if len(eventStream) > 0 {
		currentVersion = eventStream[len(eventStream)-1].SequenceNumber
	}

	return eventStream, currentVersion, nil
}

// ReadBatch retrieves up to limit events across all aggregates whose global
// position is greater than afterPosition, ordered by global position.
func (es *EventStore) ReadBatch(
	_ context.Context,
	afterPosition eventstore.GlobalPositionUint64,
	limit uint,
) (eventstore.StorableEvents, error) {

	es.mu.RLock()
	defer es.mu.RUnlock()

	eventStream := make(eventstore.StorableEvents, 0)

	for _, event := range es.log {
		if event.GlobalPosition <= afterPosition {
			continue
		}

		eventStream = append(eventStream, event)

		if uint(len(eventStream)) >= limit {
			break
		}
	}

	return eventStream, nil
}

// Append attempts to append one or multiple events onto a single aggregate's
// stream, conditional on expectedVersion still being the stream's current
// version. On success it returns the new stream version.
//
// The whole append is atomic: either all events are stored with consecutive
// sequence numbers or none are.
func (es *EventStore) Append(
	_ context.Context,
	aggregateID string,
	expectedVersion eventstore.StreamVersionUint,
	event eventstore.StorableEvent,
	additionalEvents ...eventstore.StorableEvent,
) (eventstore.StreamVersionUint, error) {

	allEvents := eventstore.StorableEvents{event}
	allEvents = append(allEvents, additionalEvents...)

	for _, e := range allEvents {
		if e.AggregateID != aggregateID {
			return 0, eventstore.ErrAggregateIDMismatch
		}
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	stream := es.streams[aggregateID]

	currentVersion := eventstore.StreamVersionUint(0)
	if len(stream) > 0 {
		currentVersion = stream[len(stream)-1].SequenceNumber
	}

	if currentVersion != expectedVersion {
		if expectedVersion == 0 {
			es.logInfo(logMsgStreamAlreadyInitialized,
				logAttrAggregateID, aggregateID,
				logAttrCurrentVersion, currentVersion,
			)

			return 0, eventstore.ErrStreamAlreadyInitialized
		}

		es.logInfo(logMsgConcurrencyConflict,
			logAttrAggregateID, aggregateID,
			logAttrExpectedVersion, expectedVersion,
			logAttrCurrentVersion, currentVersion,
		)

		return 0, eventstore.ErrConcurrencyConflict
	}

	for i := range allEvents {
		es.globalPosition++

		stored := allEvents[i]
		stored.SequenceNumber = expectedVersion + eventstore.StreamVersionUint(i) + 1
		stored.GlobalPosition = es.globalPosition

		es.streams[aggregateID] = append(es.streams[aggregateID], stored)
		es.log = append(es.log, stored)
	}

	newVersion := expectedVersion + eventstore.StreamVersionUint(len(allEvents))

	es.logInfo(logMsgEventsAppended,
		logAttrAggregateID, aggregateID,
		logAttrEventCount, len(allEvents),
	)

	return newVersion, nil
}

// SaveSnapshot stores or replaces the snapshot for the given aggregate.
func (es *EventStore) SaveSnapshot(_ context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	snapshot.CreatedAt = time.Now()
	es.snapshots[snapshot.AggregateID] = snapshot

	return nil
}

// LoadSnapshot retrieves the snapshot for the given aggregate, or
// eventstore.ErrNoSnapshotFound when none exists.
func (es *EventStore) LoadSnapshot(_ context.Context, aggregateID string) (eventstore.Snapshot, error) {
	if aggregateID == "" {
		return eventstore.Snapshot{}, eventstore.ErrEmptySnapshotAggregateID
	}

	es.mu.RLock()
	defer es.mu.RUnlock()

	snapshot, found := es.snapshots[aggregateID]
	if !found {
		return eventstore.Snapshot{}, eventstore.ErrNoSnapshotFound
	}

	return snapshot, nil
}

// DeleteSnapshot removes the snapshot for the given aggregate.
// Deleting a snapshot that does not exist is not an error.
func (es *EventStore) DeleteSnapshot(_ context.Context, aggregateID string) error {
	if aggregateID == "" {
		return eventstore.ErrEmptySnapshotAggregateID
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	delete(es.snapshots, aggregateID)

	return nil
}

func (es *EventStore) logInfo(msg string, args ...any) {
	if es.logger != nil {
		es.logger.Info(msg, args...)
	}
}
