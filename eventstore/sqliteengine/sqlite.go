package sqliteengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import
	_ "modernc.org/sqlite"                             // pure-Go sqlite driver

	"github.com/clinforge/trialcore/eventstore"
)

const (
	defaultEventTableName    = "events"
	defaultSnapshotTableName = "snapshots"
	driverName               = "sqlite"
	dialectSqlite            = "sqlite3"
	colAggregateID           = "aggregate_id"
	colSequenceNumber        = "sequence_number"
	colEventType             = "event_type"
	colOccurredAt            = "occurred_at"
	colPayload               = "payload"
	colMetadata              = "metadata"
	colGlobalPosition        = "global_position"
	colAggregateType         = "aggregate_type"
	colState                 = "state"
	colCreatedAt             = "created_at"
	cteContext               = "context"
	cteVals                  = "vals"
	aliasCurrentVersion      = "current_version"
	colSeqOffset             = "seq_offset"

	logMsgDBQueryFailed       = "database query execution failed"
	logMsgDBExecFailed        = "database execution failed during event append"
	logMsgScanRowFailed       = "failed to scan database row"
	logMsgConcurrencyConflict = "concurrency conflict detected"
	logAttrError              = "error"
	logAttrAggregateID        = "aggregate_id"
)

// EventStore is the SQLite-backed engine for per-aggregate event streams.
type EventStore struct {
	db                *sql.DB
	eventTableName    string
	snapshotTableName string
	logger            eventstore.Logger
}

// Option defines a functional option for configuring EventStore.
type Option func(*EventStore) error

// WithTableName sets the events table name for the EventStore.
func WithTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptyEventsTableName
		}

		es.eventTableName = tableName

		return nil
	}
}

// WithSnapshotTableName sets the snapshots table name for the EventStore.
func WithSnapshotTableName(tableName string) Option {
	return func(es *EventStore) error {
		if tableName == "" {
			return eventstore.ErrEmptySnapshotTableName
		}

		es.snapshotTableName = tableName

		return nil
	}
}

// WithLogger sets the logger for the EventStore.
func WithLogger(logger eventstore.Logger) Option {
	return func(es *EventStore) error {
		es.logger = logger
		return nil
	}
}

// NewEventStoreFromSQLDB creates a new EventStore using an already opened sql.DB.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (*EventStore, error) {
	if db == nil {
		return nil, eventstore.ErrNilDatabaseConnection
	}

	es := &EventStore{
		db:                db,
		eventTableName:    defaultEventTableName,
		snapshotTableName: defaultSnapshotTableName,
	}

	for _, option := range options {
		if err := option(es); err != nil {
			return nil, err
		}
	}

	return es, nil
}

// NewEventStoreFromFile opens the SQLite database at path with the pure-Go
// driver and creates a new EventStore on it. Use ":memory:" for an ephemeral
// store.
func NewEventStoreFromFile(path string, options ...Option) (*EventStore, error) {
	db, openErr := sql.Open(driverName, path)
	if openErr != nil {
		return nil, errors.Join(eventstore.ErrNilDatabaseConnection, openErr)
	}

	return NewEventStoreFromSQLDB(db, options...)
}

// CreateSchema creates the events and snapshots tables when they do not exist
// yet. It is intended for tests and single-node setups; production Postgres
// deployments manage their schema with migrations instead.
func (es *EventStore) CreateSchema(ctx context.Context) error {
	eventsDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s INTEGER PRIMARY KEY AUTOINCREMENT,
		%s TEXT NOT NULL,
		%s INTEGER NOT NULL,
		%s TEXT NOT NULL,
		%s TIMESTAMP NOT NULL,
		%s TEXT NOT NULL,
		%s TEXT NOT NULL,
		UNIQUE (%s, %s)
	)`,
		es.eventTableName,
		colGlobalPosition, colAggregateID, colSequenceNumber, colEventType,
		colOccurredAt, colPayload, colMetadata,
		colAggregateID, colSequenceNumber,
	)

	snapshotsDDL := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		%s TEXT PRIMARY KEY,
		%s TEXT NOT NULL,
		%s INTEGER NOT NULL,
		%s TEXT NOT NULL,
		%s TIMESTAMP NOT NULL
	)`,
		es.snapshotTableName,
		colAggregateID, colAggregateType, colSequenceNumber, colState, colCreatedAt,
	)

	if _, err := es.db.ExecContext(ctx, eventsDDL); err != nil {
		return errors.Join(eventstore.ErrAppendingEventFailed, err)
	}

	if _, err := es.db.ExecContext(ctx, snapshotsDDL); err != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, err)
	}

	return nil
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
	ctx context.Context,
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

	selectStmt := goqu.Dialect(dialectSqlite).
		From(es.eventTableName).
		Select(colAggregateID, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata, colGlobalPosition).
		Where(goqu.C(colAggregateID).Eq(aggregateID), goqu.C(colSequenceNumber).Gt(afterSequence)).
		Order(goqu.I(colSequenceNumber).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, 0, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	eventStream, scanErr := es.queryEvents(ctx, sqlQuery)
	if scanErr != nil {
		return nil, 0, scanErr
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
	ctx context.Context,
	afterPosition eventstore.GlobalPositionUint64,
	limit uint,
) (eventstore.StorableEvents, error) {

	selectStmt := goqu.Dialect(dialectSqlite).
		From(es.eventTableName).
		Select(colAggregateID, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata, colGlobalPosition).
		Where(goqu.C(colGlobalPosition).Gt(afterPosition)).
		Order(goqu.I(colGlobalPosition).Asc()).
		Limit(limit)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return nil, errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return es.queryEvents(ctx, sqlQuery)
}

// Append attempts to append one or multiple events onto a single aggregate's
// stream, conditional on expectedVersion still being the stream's current
// version. On success it returns the new stream version.
func (es *EventStore) Append(
	ctx context.Context,
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

	sqlQuery, buildErr := es.buildInsertQuery(allEvents, aggregateID, expectedVersion)
	if buildErr != nil {
		return 0, buildErr
	}

	result, execErr := es.db.ExecContext(ctx, sqlQuery)
	if execErr != nil {
		es.logError(logMsgDBExecFailed, logAttrError, execErr.Error())
		return 0, errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		return 0, errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsErr)
	}

	if rowsAffected < int64(len(allEvents)) {
		es.logInfo(logMsgConcurrencyConflict, logAttrAggregateID, aggregateID)

		if expectedVersion == 0 {
			return 0, eventstore.ErrStreamAlreadyInitialized
		}

		return 0, eventstore.ErrConcurrencyConflict
	}

	return expectedVersion + eventstore.StreamVersionUint(len(allEvents)), nil
}

// SaveSnapshot stores or replaces the snapshot for the given aggregate.
func (es *EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	insertStmt := goqu.Dialect(dialectSqlite).
		Insert(es.snapshotTableName).
		Cols(colAggregateID, colAggregateType, colSequenceNumber, colState, colCreatedAt).
		Vals(goqu.Vals{
			snapshot.AggregateID,
			snapshot.AggregateType,
			snapshot.SequenceNumber,
			string(snapshot.Data),
			snapshot.CreatedAt,
		}).
		OnConflict(goqu.DoUpdate(colAggregateID, goqu.Record{
			colAggregateType:  snapshot.AggregateType,
			colSequenceNumber: snapshot.SequenceNumber,
			colState:          string(snapshot.Data),
			colCreatedAt:      snapshot.CreatedAt,
		}))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := es.db.ExecContext(ctx, sqlQuery); execErr != nil {
		return errors.Join(eventstore.ErrSavingSnapshotFailed, execErr)
	}

	return nil
}

// LoadSnapshot retrieves the snapshot for the given aggregate, or
// eventstore.ErrNoSnapshotFound when none exists.
func (es *EventStore) LoadSnapshot(ctx context.Context, aggregateID string) (eventstore.Snapshot, error) {
	var empty eventstore.Snapshot

	if aggregateID == "" {
		return empty, eventstore.ErrEmptySnapshotAggregateID
	}

	selectStmt := goqu.Dialect(dialectSqlite).
		From(es.snapshotTableName).
		Select(colAggregateType, colSequenceNumber, colState, colCreatedAt).
		Where(goqu.C(colAggregateID).Eq(aggregateID))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return empty, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	row := es.db.QueryRowContext(ctx, sqlQuery)

	snapshot := eventstore.Snapshot{AggregateID: aggregateID}
	var data string

	scanErr := row.Scan(&snapshot.AggregateType, &snapshot.SequenceNumber, &data, &snapshot.CreatedAt)
	if errors.Is(scanErr, sql.ErrNoRows) {
		return empty, eventstore.ErrNoSnapshotFound
	}
	if scanErr != nil {
		return empty, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrScanningDBRowFailed, scanErr)
	}

	snapshot.Data = []byte(data)

	return snapshot, nil
}

// DeleteSnapshot removes the snapshot for the given aggregate.
// Deleting a snapshot that does not exist is not an error.
func (es *EventStore) DeleteSnapshot(ctx context.Context, aggregateID string) error {
	if aggregateID == "" {
		return eventstore.ErrEmptySnapshotAggregateID
	}

	deleteStmt := goqu.Dialect(dialectSqlite).
		Delete(es.snapshotTableName).
		Where(goqu.C(colAggregateID).Eq(aggregateID))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	if _, execErr := es.db.ExecContext(ctx, sqlQuery); execErr != nil {
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, execErr)
	}

	return nil
}

func (es *EventStore) buildInsertQuery(
	allEvents eventstore.StorableEvents,
	aggregateID string,
	expectedVersion eventstore.StreamVersionUint,
) (string, error) {

	builder := goqu.Dialect(dialectSqlite)

	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colSequenceNumber), 0).As(aliasCurrentVersion)).
		Where(goqu.C(colAggregateID).Eq(aggregateID))

	unionStatements := make([]*goqu.SelectDataset, len(allEvents))
	for i, e := range allEvents {
		unionStatements[i] = builder.
			Select(
				goqu.V(i+1).As(colSeqOffset),
				goqu.V(e.EventType).As(colEventType),
				goqu.V(e.OccurredAt).As(colOccurredAt),
				goqu.V(string(e.PayloadJSON)).As(colPayload),
				goqu.V(string(e.MetadataJSON)).As(colMetadata),
			)
	}

	valuesStmt := unionStatements[0]
	for i := 1; i < len(unionStatements); i++ {
		valuesStmt = valuesStmt.UnionAll(unionStatements[i])
	}

	nextSequence := fmt.Sprintf("%s.%s + %s.%s", cteContext, aliasCurrentVersion, cteVals, colSeqOffset)

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colAggregateID, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.V(aggregateID),
					goqu.L(nextSequence),
					goqu.I(fmt.Sprintf("%s.%s", cteVals, colEventType)),
					goqu.I(fmt.Sprintf("%s.%s", cteVals, colOccurredAt)),
					goqu.I(fmt.Sprintf("%s.%s", cteVals, colPayload)),
					goqu.I(fmt.Sprintf("%s.%s", cteVals, colMetadata)),
				).
				Where(goqu.C(aliasCurrentVersion).Eq(goqu.V(expectedVersion))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es *EventStore) queryEvents(ctx context.Context, sqlQuery string) (eventstore.StorableEvents, error) {
	rows, queryErr := es.db.QueryContext(ctx, sqlQuery)
	if queryErr != nil {
		es.logError(logMsgDBQueryFailed, logAttrError, queryErr.Error())
		return nil, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}
	defer func() { _ = rows.Close() }()

	eventStream := make(eventstore.StorableEvents, 0)

	for rows.Next() {
		var (
			rowAggregateID    string
			sequenceNumber    eventstore.StreamVersionUint
			eventType         string
			occurredAt        time.Time
			payload, metadata string
			globalPosition    eventstore.GlobalPositionUint64
		)

		scanErr := rows.Scan(&rowAggregateID, &sequenceNumber, &eventType, &occurredAt, &payload, &metadata, &globalPosition)
		if scanErr != nil {
			es.logError(logMsgScanRowFailed, logAttrError, scanErr.Error())
			return nil, errors.Join(eventstore.ErrScanningDBRowFailed, scanErr)
		}

		storable, buildErr := eventstore.BuildStorableEvent(rowAggregateID, eventType, occurredAt, []byte(payload), []byte(metadata))
		if buildErr != nil {
			return nil, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildErr)
		}

		storable.SequenceNumber = sequenceNumber
		storable.GlobalPosition = globalPosition

		eventStream = append(eventStream, storable)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, errors.Join(eventstore.ErrQueryingEventsFailed, rowsErr)
	}

	return eventStream, nil
}

func (es *EventStore) logInfo(msg string, args ...any) {
	if es.logger != nil {
		es.logger.Info(msg, args...)
	}
}

func (es *EventStore) logError(msg string, args ...any) {
	if es.logger != nil {
		es.logger.Error(msg, args...)
	}
}
