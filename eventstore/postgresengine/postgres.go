package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/eventstore/postgresengine/internal/adapters"
)

const (
	defaultEventTableName          = "events"
	defaultSnapshotTableName       = "snapshots"
	logMsgBuildSelectQueryFailed   = "failed to build select query"
	logMsgDBQueryFailed            = "database query execution failed"
	logMsgCloseRowsFailed          = "failed to close database rows"
	logMsgScanRowFailed            = "failed to scan database row"
	logMsgBuildStorableEventFailed = "failed to build storable event from database row"
	logMsgBuildInsertQueryFailed   = "failed to build insert query"
	logMsgDBExecFailed             = "database execution failed during event append"
	logMsgRowsAffectedFailed       = "failed to get rows affected count"
	logMsgSingleEventSQLFailed     = "failed to convert single event insert statement to SQL"
	logMsgMultiEventSQLFailed      = "failed to convert multiple events insert statement to SQL"
	logMsgStreamReadCompleted      = "stream read completed"
	logMsgBatchReadCompleted       = "batch read completed"
	logMsgEventsAppended           = "events appended"
	logMsgConcurrencyConflict      = "concurrency conflict detected"
	logMsgStreamAlreadyInitialized = "stream already initialized, first event exists"
	logMsgSQLExecuted              = "executed sql for: "
	logMsgOperation                = "eventstore operation: "
	logAttrError                   = "error"
	logAttrQuery                   = "query"
	logAttrAggregateID             = "aggregate_id"
	logAttrEventType               = "event_type"
	logAttrEventCount              = "event_count"
	logAttrDurationMS              = "duration_ms"
	logAttrExpectedEvents          = "expected_events"
	logAttrRowsAffected            = "rows_affected"
	logAttrExpectedVersion         = "expected_version"
	logAttrAfterPosition           = "after_position"
	logActionReadStream            = "read_stream"
	logActionReadBatch             = "read_batch"
	logActionAppend                = "append"
	colAggregateID                 = "aggregate_id"
	colSequenceNumber              = "sequence_number"
	colEventType                   = "event_type"
	colOccurredAt                  = "occurred_at"
	colPayload                     = "payload"
	colMetadata                    = "metadata"
	colGlobalPosition              = "global_position"
	colAggregateType               = "aggregate_type"
	colState                       = "state"
	colCreatedAt                   = "created_at"
	cteContext                     = "context"
	cteVals                        = "vals"
	dialectPostgres                = "postgres"
	aliasCurrentVersion            = "current_version"
	colSeqOffset                   = "seq_offset"
	castText                       = "?::text"
	castTimestamp                  = "?::timestamp with time zone"
	castJsonb                      = "?::jsonb"
	castBigint                     = "?::bigint"

	metricDurationReadStream  = "eventstore.read_stream.duration"
	metricDurationReadBatch   = "eventstore.read_batch.duration"
	metricDurationAppend      = "eventstore.append.duration"
	metricConcurrencyConflict = "eventstore.concurrency_conflicts"
	metricLabelStatus         = "status"
	metricLabelOperation      = "operation"
	metricStatusSuccess       = "success"
	metricStatusError         = "error"
	metricStatusConflict      = "conflict"
	spanNameReadStream        = "eventstore.read_stream"
	spanNameReadBatch         = "eventstore.read_batch"
	spanNameAppend            = "eventstore.append"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// EventStore is the Postgres-backed engine for per-aggregate event streams.
//
// Every aggregate's events live in one shared table, partitioned logically by
// aggregate_id with gapless sequence numbers starting at 1. Appends are
// conditional on the caller's expected stream version, reads come back in
// sequence order, and a store-wide global position feeds projections.
type EventStore struct {
	db                adapters.DBAdapter
	eventTableName    string
	snapshotTableName string
	logger            eventstore.Logger
	contextualLogger  eventstore.ContextualLogger
	metrics           eventstore.MetricsCollector
	tracing           eventstore.TracingCollector
}

type queryResultRow struct {
	aggregateID    string
	sequenceNumber eventstore.StreamVersionUint
	eventType      string
	occurredAt     time.Time
	payload        []byte
	metadata       []byte
	globalPosition eventstore.GlobalPositionUint64
}

// NewEventStoreFromPGXPool creates a new EventStore using a pgx Pool with optional configuration.
func NewEventStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return buildEventStore(adapters.NewPGXAdapter(db), options...)
}

// NewEventStoreFromPGXPoolWithReplica creates a new EventStore using a primary
// pgx Pool and a replica pool for eventually consistent reads.
func NewEventStoreFromPGXPoolWithReplica(db *pgxpool.Pool, replica *pgxpool.Pool, options ...Option) (EventStore, error) {
	if db == nil || replica == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return buildEventStore(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewEventStoreFromSQLDB creates a new EventStore using a sql.DB with optional configuration.
func NewEventStoreFromSQLDB(db *sql.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return buildEventStore(adapters.NewSQLAdapter(db), options...)
}

// NewEventStoreFromSQLX creates a new EventStore using a sqlx.DB with optional configuration.
func NewEventStoreFromSQLX(db *sqlx.DB, options ...Option) (EventStore, error) {
	if db == nil {
		return EventStore{}, eventstore.ErrNilDatabaseConnection
	}

	return buildEventStore(adapters.NewSQLXAdapter(db), options...)
}

func buildEventStore(db adapters.DBAdapter, options ...Option) (EventStore, error) {
	es := EventStore{
		db:                db,
		eventTableName:    defaultEventTableName,
		snapshotTableName: defaultSnapshotTableName,
	}

	for _, option := range options {
		if err := option(&es); err != nil {
			return EventStore{}, err
		}
	}

	return es, nil
}

// ReadStream retrieves all events of a single aggregate in sequence order and
// returns them as eventstore.StorableEvents together with the current stream
// version, which is 0 for a stream that does not exist yet.
//
// The returned version is the expected-version input for a subsequent Append.
func (es EventStore) ReadStream(ctx context.Context, aggregateID string) (
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
func (es EventStore) ReadStreamFrom(
	ctx context.Context,
	aggregateID string,
	afterSequence eventstore.StreamVersionUint,
) (
	eventstore.StorableEvents,
	eventstore.StreamVersionUint,
	error,
) {

	var empty eventstore.StorableEvents

	if aggregateID == "" {
		return empty, 0, eventstore.ErrEmptyAggregateID
	}

	spanCtx, span := es.startSpan(ctx, spanNameReadStream, map[string]string{logAttrAggregateID: aggregateID})
	ctx = spanCtx

	sqlQuery, buildQueryErr := es.buildStreamSelectQuery(aggregateID, afterSequence)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, logAttrError, buildQueryErr.Error())
		es.finishSpan(span, metricStatusError, nil)

		return empty, 0, buildQueryErr
	}

	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery, logActionReadStream)
	if queryErr != nil {
		es.recordDuration(ctx, metricDurationReadStream, duration, metricStatusError)
		es.finishSpan(span, metricStatusError, nil)

		return empty, 0, queryErr
	}
	defer es.closeRows(ctx, rows)

	eventStream, scanErr := es.processQueryResults(ctx, rows)
	if scanErr != nil {
		es.recordDuration(ctx, metricDurationReadStream, duration, metricStatusError)
		es.finishSpan(span, metricStatusError, nil)

		return empty, 0, scanErr
	}

	currentVersion := afterSequence
	if len(eventStream) > 0 {
		currentVersion = eventStream[len(eventStream)-1].SequenceNumber
	}

	es.recordDuration(ctx, metricDurationReadStream, duration, metricStatusSuccess)
	es.finishSpan(span, metricStatusSuccess, map[string]string{logAttrEventCount: strconv.Itoa(len(eventStream))})
	es.logOperation(ctx,
		logMsgStreamReadCompleted,
		logAttrAggregateID, aggregateID,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return eventStream, currentVersion, nil
}

// ReadBatch retrieves up to limit events across all aggregates whose global
// position is greater than afterPosition, ordered by global position.
//
// It is the feed for the projection engine, which re-reads from its durable
// checkpoint; callers may allow replica reads via eventstore.WithEventualConsistency.
func (es EventStore) ReadBatch(
	ctx context.Context,
	afterPosition eventstore.GlobalPositionUint64,
	limit uint,
) (eventstore.StorableEvents, error) {

	var empty eventstore.StorableEvents

	spanCtx, span := es.startSpan(ctx, spanNameReadBatch, map[string]string{
		logAttrAfterPosition: strconv.FormatUint(afterPosition, 10),
	})
	ctx = spanCtx

	sqlQuery, buildQueryErr := es.buildBatchSelectQuery(afterPosition, limit)
	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildSelectQueryFailed, logAttrError, buildQueryErr.Error())
		es.finishSpan(span, metricStatusError, nil)

		return empty, buildQueryErr
	}

	rows, duration, queryErr := es.executeQuery(ctx, sqlQuery, logActionReadBatch)
	if queryErr != nil {
		es.recordDuration(ctx, metricDurationReadBatch, duration, metricStatusError)
		es.finishSpan(span, metricStatusError, nil)

		return empty, queryErr
	}
	defer es.closeRows(ctx, rows)

	eventStream, scanErr := es.processQueryResults(ctx, rows)
	if scanErr != nil {
		es.recordDuration(ctx, metricDurationReadBatch, duration, metricStatusError)
		es.finishSpan(span, metricStatusError, nil)

		return empty, scanErr
	}

	es.recordDuration(ctx, metricDurationReadBatch, duration, metricStatusSuccess)
	es.finishSpan(span, metricStatusSuccess, map[string]string{logAttrEventCount: strconv.Itoa(len(eventStream))})
	es.logOperation(ctx,
		logMsgBatchReadCompleted,
		logAttrAfterPosition, afterPosition,
		logAttrEventCount, len(eventStream),
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return eventStream, nil
}

// Append attempts to append one or multiple eventstore.StorableEvent(s) onto a
// single aggregate's stream, conditional on expectedVersion still being the
// stream's current version. On success it returns the new stream version.
//
// When another writer advanced the stream first, no row is inserted and the
// error is eventstore.ErrConcurrencyConflict, or
// eventstore.ErrStreamAlreadyInitialized for the expectedVersion == 0 case
// where two writers raced to create the same stream.
//
// All events must belong to the aggregate identified by aggregateID. The
// insert query to append multiple events atomically is heavier than the one
// built to append a single event; only supply multiple events if the decision
// genuinely produced more than one.
func (es EventStore) Append(
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

	spanCtx, span := es.startSpan(ctx, spanNameAppend, map[string]string{
		logAttrAggregateID:     aggregateID,
		logAttrEventCount:      strconv.Itoa(len(allEvents)),
		logAttrExpectedVersion: strconv.FormatUint(uint64(expectedVersion), 10),
	})
	ctx = spanCtx

	sqlQuery, buildQueryErr := es.buildAppendQuery(ctx, allEvents, aggregateID, expectedVersion)
	if buildQueryErr != nil {
		es.finishSpan(span, metricStatusError, nil)
		return 0, buildQueryErr
	}

	rowsAffected, duration, execErr := es.executeAppendQuery(ctx, sqlQuery)
	if execErr != nil {
		es.recordDuration(ctx, metricDurationAppend, duration, metricStatusError)
		es.finishSpan(span, metricStatusError, nil)

		return 0, execErr
	}

	if err := es.validateAppendResult(ctx, rowsAffected, len(allEvents), aggregateID, expectedVersion); err != nil {
		es.recordDuration(ctx, metricDurationAppend, duration, metricStatusConflict)
		es.finishSpan(span, metricStatusConflict, nil)

		return 0, err
	}

	newVersion := expectedVersion + eventstore.StreamVersionUint(len(allEvents))

	es.recordDuration(ctx, metricDurationAppend, duration, metricStatusSuccess)
	es.finishSpan(span, metricStatusSuccess, nil)
	es.logOperation(ctx,
		logMsgEventsAppended,
		logAttrAggregateID, aggregateID,
		logAttrEventCount, len(allEvents),
		logAttrDurationMS, es.durationToMilliseconds(duration),
	)

	return newVersion, nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (es EventStore) executeQuery(ctx context.Context, sqlQuery string, action string) (
	adapters.DBRows,
	time.Duration,
	error,
) {

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, action, duration)

	if queryErr != nil {
		es.logError(ctx, logMsgDBQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)

		return nil, duration, errors.Join(eventstore.ErrQueryingEventsFailed, queryErr)
	}

	return rows, duration, nil
}

// closeRows safely closes database rows and logs any errors.
func (es EventStore) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		es.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}

// processQueryResults converts database rows into storable events.
func (es EventStore) processQueryResults(ctx context.Context, rows adapters.DBRows) (
	eventstore.StorableEvents,
	error,
) {

	var empty eventstore.StorableEvents
	result := queryResultRow{}
	eventStream := make(eventstore.StorableEvents, 0)

	for rows.Next() {
		rowScanErr := rows.Scan(
			&result.aggregateID,
			&result.sequenceNumber,
			&result.eventType,
			&result.occurredAt,
			&result.payload,
			&result.metadata,
			&result.globalPosition,
		)
		if rowScanErr != nil {
			es.logError(ctx, logMsgScanRowFailed, logAttrError, rowScanErr.Error())

			return empty, errors.Join(eventstore.ErrScanningDBRowFailed, rowScanErr)
		}

		event, buildStorableErr := eventstore.BuildStorableEvent(
			result.aggregateID, result.eventType, result.occurredAt, result.payload, result.metadata)
		if buildStorableErr != nil {
			es.logError(ctx, logMsgBuildStorableEventFailed, logAttrError, buildStorableErr.Error(), logAttrEventType, result.eventType)

			return empty, errors.Join(eventstore.ErrBuildingStorableEventFailed, buildStorableErr)
		}

		event.SequenceNumber = result.sequenceNumber
		event.GlobalPosition = result.globalPosition

		eventStream = append(eventStream, event)
	}

	return eventStream, nil
}

// buildAppendQuery builds the appropriate SQL query for single or multiple events.
func (es EventStore) buildAppendQuery(
	ctx context.Context,
	allEvents eventstore.StorableEvents,
	aggregateID string,
	expectedVersion eventstore.StreamVersionUint,
) (sqlQueryString, error) {

	var sqlQuery sqlQueryString
	var buildQueryErr error

	switch len(allEvents) {
	case 1:
		sqlQuery, buildQueryErr = es.buildInsertQueryForSingleEvent(ctx, allEvents[0], expectedVersion)

	default:
		sqlQuery, buildQueryErr = es.buildInsertQueryForMultipleEvents(ctx, allEvents, aggregateID, expectedVersion)
	}

	if buildQueryErr != nil {
		es.logError(ctx, logMsgBuildInsertQueryFailed, logAttrError, buildQueryErr.Error(), logAttrEventCount, len(allEvents))

		return "", buildQueryErr
	}

	return sqlQuery, nil
}

// executeAppendQuery executes the SQL append query and returns rows affected and duration.
func (es EventStore) executeAppendQuery(ctx context.Context, sqlQuery string) (
	rowsAffectedInt64,
	queryDuration,
	error,
) {

	start := time.Now()
	tag, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, logActionAppend, duration)

	if execErr != nil {
		es.logError(ctx, logMsgDBExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)

		return 0, duration, errors.Join(eventstore.ErrAppendingEventFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := tag.RowsAffected()
	if rowsAffectedErr != nil {
		es.logError(ctx, logMsgRowsAffectedFailed, logAttrError, rowsAffectedErr.Error())

		return 0, duration, errors.Join(eventstore.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// validateAppendResult checks if the append operation was successful and detects concurrency conflicts.
//
// A conflict on an empty stream (expectedVersion 0) means another writer
// created the stream first. That is a distinct condition from a version race
// on an existing stream: re-deciding will not make the duplicate creation
// valid, so it must not be retried blindly.
func (es EventStore) validateAppendResult(
	ctx context.Context,
	rowsAffected int64,
	expectedEventCount int,
	aggregateID string,
	expectedVersion eventstore.StreamVersionUint,
) error {

	if rowsAffected >= int64(expectedEventCount) {
		return nil
	}

	es.incrementCounter(ctx, metricConcurrencyConflict, logActionAppend)

	if expectedVersion == 0 {
		es.logOperation(ctx,
			logMsgStreamAlreadyInitialized,
			logAttrAggregateID, aggregateID,
			logAttrExpectedEvents, expectedEventCount,
			logAttrRowsAffected, rowsAffected,
		)

		return eventstore.ErrStreamAlreadyInitialized
	}

	es.logOperation(ctx,
		logMsgConcurrencyConflict,
		logAttrAggregateID, aggregateID,
		logAttrExpectedEvents, expectedEventCount,
		logAttrRowsAffected, rowsAffected,
		logAttrExpectedVersion, expectedVersion,
	)

	return eventstore.ErrConcurrencyConflict
}

func (es EventStore) buildStreamSelectQuery(
	aggregateID string,
	afterSequence eventstore.StreamVersionUint,
) (sqlQueryString, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colAggregateID, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata, colGlobalPosition).
		Where(goqu.C(colAggregateID).Eq(aggregateID), goqu.C(colSequenceNumber).Gt(afterSequence)).
		Order(goqu.I(colSequenceNumber).Asc())

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es EventStore) buildBatchSelectQuery(
	afterPosition eventstore.GlobalPositionUint64,
	limit uint,
) (sqlQueryString, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(es.eventTableName).
		Select(colAggregateID, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata, colGlobalPosition).
		Where(goqu.C(colGlobalPosition).Gt(afterPosition)).
		Order(goqu.I(colGlobalPosition).Asc()).
		Limit(limit)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es EventStore) buildInsertQueryForSingleEvent(
	ctx context.Context,
	event eventstore.StorableEvent,
	expectedVersion eventstore.StreamVersionUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// Define the subquery for the CTE: the stream's current version
	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colSequenceNumber), 0).As(aliasCurrentVersion)).
		Where(goqu.C(colAggregateID).Eq(event.AggregateID))

	// Define the SELECT for the INSERT
	selectStmt := builder.
		From(cteContext).
		Select(
			goqu.L(castText, event.AggregateID),
			goqu.L(aliasCurrentVersion+" + 1"),
			goqu.V(event.EventType),
			goqu.V(event.OccurredAt),
			goqu.V(event.PayloadJSON),
			goqu.V(event.MetadataJSON),
		).
		Where(goqu.C(aliasCurrentVersion).Eq(goqu.V(expectedVersion)))

	// Finalize the full INSERT query
	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colAggregateID, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata).
		FromQuery(selectStmt).
		With(cteContext, cteStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		es.logError(ctx, logMsgSingleEventSQLFailed, logAttrError, toSQLErr.Error(), logAttrEventType, event.EventType)

		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (es EventStore) buildInsertQueryForMultipleEvents(
	ctx context.Context,
	events eventstore.StorableEvents,
	aggregateID string,
	expectedVersion eventstore.StreamVersionUint,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	// Define the subquery for the CTE: the stream's current version
	cteStmt := builder.
		From(es.eventTableName).
		Select(goqu.COALESCE(goqu.MAX(colSequenceNumber), 0).As(aliasCurrentVersion)).
		Where(goqu.C(colAggregateID).Eq(aggregateID))

	// Create individual SELECT statements for each event, carrying the offset
	// that turns the stream's current version into this event's sequence number
	unionStatements := make([]*goqu.SelectDataset, len(events))
	for i, event := range events {
		unionStatements[i] = builder.
			Select(
				goqu.L(castBigint, i+1).As(colSeqOffset),
				goqu.L(castText, event.EventType).As(colEventType),
				goqu.L(castTimestamp, event.OccurredAt).As(colOccurredAt),
				goqu.L(castJsonb, event.PayloadJSON).As(colPayload),
				goqu.L(castJsonb, event.MetadataJSON).As(colMetadata),
			)
	}

	// Combine all SELECT statements with UNION ALL
	valuesStmt := unionStatements[0]
	for i := 1; i < len(unionStatements); i++ {
		valuesStmt = valuesStmt.UnionAll(unionStatements[i])
	}

	// Finalize the full INSERT query
	valsEventType := fmt.Sprintf("%s.%s", cteVals, colEventType)
	valsOccurredAt := fmt.Sprintf("%s.%s", cteVals, colOccurredAt)
	valsPayload := fmt.Sprintf("%s.%s", cteVals, colPayload)
	valsMetadata := fmt.Sprintf("%s.%s", cteVals, colMetadata)
	nextSequence := fmt.Sprintf("%s.%s + %s.%s", cteContext, aliasCurrentVersion, cteVals, colSeqOffset)

	insertStmt := builder.
		Insert(es.eventTableName).
		Cols(colAggregateID, colSequenceNumber, colEventType, colOccurredAt, colPayload, colMetadata).
		With(cteContext, cteStmt).
		With(cteVals, valuesStmt).
		FromQuery(
			builder.From(cteContext, cteVals).
				Select(
					goqu.L(castText, aggregateID),
					goqu.L(nextSequence),
					goqu.I(valsEventType),
					goqu.I(valsOccurredAt),
					goqu.I(valsPayload),
					goqu.I(valsMetadata),
				).
				Where(goqu.C(aliasCurrentVersion).Eq(goqu.V(expectedVersion))),
		)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		es.logError(ctx, logMsgMultiEventSQLFailed, logAttrError, toSQLErr.Error(), logAttrEventCount, len(events))

		return "", errors.Join(eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (es EventStore) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	if es.contextualLogger != nil {
		es.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, logAttrDurationMS, es.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
		return
	}

	if es.logger != nil {
		es.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, es.durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (es EventStore) logOperation(ctx context.Context, action string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
		return
	}

	if es.logger != nil {
		es.logger.Info(logMsgOperation+action, args...)
	}
}

func (es EventStore) logWarn(ctx context.Context, msg string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.WarnContext(ctx, msg, args...)
		return
	}

	if es.logger != nil {
		es.logger.Warn(msg, args...)
	}
}

func (es EventStore) logError(ctx context.Context, msg string, args ...any) {
	if es.contextualLogger != nil {
		es.contextualLogger.ErrorContext(ctx, msg, args...)
		return
	}

	if es.logger != nil {
		es.logger.Error(msg, args...)
	}
}

// recordDuration records an operation duration, preferring the context-aware
// collector methods when the configured collector supports them.
func (es EventStore) recordDuration(ctx context.Context, metric string, duration time.Duration, status string) {
	if es.metrics == nil {
		return
	}

	labels := map[string]string{metricLabelStatus: status}

	if contextual, ok := es.metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.RecordDurationContext(ctx, metric, duration, labels)
		return
	}

	es.metrics.RecordDuration(metric, duration, labels)
}

func (es EventStore) incrementCounter(ctx context.Context, metric string, operation string) {
	if es.metrics == nil {
		return
	}

	labels := map[string]string{metricLabelOperation: operation}

	if contextual, ok := es.metrics.(eventstore.ContextualMetricsCollector); ok {
		contextual.IncrementCounterContext(ctx, metric, labels)
		return
	}

	es.metrics.IncrementCounter(metric, labels)
}

func (es EventStore) startSpan(ctx context.Context, name string, attrs map[string]string) (context.Context, eventstore.SpanContext) {
	if es.tracing == nil {
		return ctx, nil
	}

	return es.tracing.StartSpan(ctx, name, attrs)
}

func (es EventStore) finishSpan(span eventstore.SpanContext, status string, attrs map[string]string) {
	if es.tracing == nil || span == nil {
		return
	}

	es.tracing.FinishSpan(span, status, attrs)
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (es EventStore) durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
