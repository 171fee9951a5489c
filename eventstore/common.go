package eventstore

import (
	"errors"
)

var ErrEmptyEventsTableName = errors.New("empty events table name supplied")
var ErrEmptySnapshotTableName = errors.New("empty snapshot table name supplied")
var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrConcurrencyConflict = errors.New("concurrency conflict, stream version advanced since read")
var ErrAggregateIDMismatch = errors.New("all events of one append must belong to the same aggregate")
var ErrStreamAlreadyInitialized = errors.New("stream already initialized, first event exists")
var ErrBuildingQueryFailed = errors.New("building query failed")
var ErrQueryingEventsFailed = errors.New("querying events failed")
var ErrAppendingEventFailed = errors.New("appending event failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrBuildingStorableEventFailed = errors.New("building storable event from database row failed")
var ErrGettingRowsAffectedFailed = errors.New("getting rows affected count failed")

// StreamVersionUint is a type alias for uint, representing the sequence number
// of the last event in a single aggregate's stream (0 for an empty stream).
// It is the expected-version input for optimistic-concurrency appends.
type StreamVersionUint = uint

// GlobalPositionUint64 is a type alias for uint64, representing the position of
// an event in the store-wide append order. It is assigned by the engine on
// reads through the projection feed, never by callers.
type GlobalPositionUint64 = uint64
