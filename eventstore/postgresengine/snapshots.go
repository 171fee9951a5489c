package postgresengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/clinforge/trialcore/eventstore"
)

const (
	logMsgSnapshotSaved        = "snapshot saved"
	logMsgSnapshotLoaded       = "snapshot loaded"
	logMsgSnapshotDeleted      = "snapshot deleted"
	logMsgSnapshotBuildFailed  = "failed to build snapshot query"
	logMsgSnapshotExecFailed   = "snapshot statement execution failed"
	logMsgSnapshotScanFailed   = "failed to scan snapshot row"
	logAttrSequenceNumber      = "sequence_number"
	logActionSaveSnapshot      = "save_snapshot"
	logActionLoadSnapshot      = "load_snapshot"
	logActionDeleteSnapshot    = "delete_snapshot"
	metricDurationSnapshotSave = "eventstore.snapshot.save.duration"
	metricDurationSnapshotLoad = "eventstore.snapshot.load.duration"
)

// SaveSnapshot stores or replaces the snapshot for the given aggregate.
//
// Snapshots are keyed by aggregate id; a save overwrites any previous snapshot
// so at most one snapshot per aggregate exists at a time. The event log stays
// authoritative, so losing a snapshot only costs a longer replay.
func (es EventStore) SaveSnapshot(ctx context.Context, snapshot eventstore.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}

	builder := goqu.Dialect(dialectPostgres)

	insertStmt := builder.
		Insert(es.snapshotTableName).
		Cols(colAggregateID, colAggregateType, colSequenceNumber, colState, colCreatedAt).
		Vals(goqu.Vals{
			snapshot.AggregateID,
			snapshot.AggregateType,
			snapshot.SequenceNumber,
			[]byte(snapshot.Data),
			snapshot.CreatedAt,
		}).
		OnConflict(goqu.DoUpdate(colAggregateID, goqu.Record{
			colAggregateType:  snapshot.AggregateType,
			colSequenceNumber: snapshot.SequenceNumber,
			colState:          []byte(snapshot.Data),
			colCreatedAt:      snapshot.CreatedAt,
		}))

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		es.logError(ctx, logMsgSnapshotBuildFailed, logAttrError, toSQLErr.Error())
		return errors.Join(eventstore.ErrSavingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, logActionSaveSnapshot, duration)

	if execErr != nil {
		es.logError(ctx, logMsgSnapshotExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return errors.Join(eventstore.ErrSavingSnapshotFailed, execErr)
	}

	es.recordDuration(ctx, metricDurationSnapshotSave, duration, metricStatusSuccess)
	es.logOperation(ctx,
		logMsgSnapshotSaved,
		logAttrAggregateID, snapshot.AggregateID,
		logAttrSequenceNumber, snapshot.SequenceNumber,
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return nil
}

// LoadSnapshot retrieves the snapshot for the given aggregate, or
// eventstore.ErrNoSnapshotFound when none exists.
func (es EventStore) LoadSnapshot(ctx context.Context, aggregateID string) (eventstore.Snapshot, error) {
	var empty eventstore.Snapshot

	if aggregateID == "" {
		return empty, eventstore.ErrEmptySnapshotAggregateID
	}

	builder := goqu.Dialect(dialectPostgres)

	selectStmt := builder.
		From(es.snapshotTableName).
		Select(colAggregateType, colSequenceNumber, colState, colCreatedAt).
		Where(goqu.C(colAggregateID).Eq(aggregateID))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		es.logError(ctx, logMsgSnapshotBuildFailed, logAttrError, toSQLErr.Error())
		return empty, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	rows, queryErr := es.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, logActionLoadSnapshot, duration)

	if queryErr != nil {
		es.logError(ctx, logMsgSnapshotExecFailed, logAttrError, queryErr.Error(), logAttrQuery, sqlQuery)
		return empty, errors.Join(eventstore.ErrLoadingSnapshotFailed, queryErr)
	}
	defer es.closeRows(ctx, rows)

	if !rows.Next() {
		return empty, eventstore.ErrNoSnapshotFound
	}

	snapshot := eventstore.Snapshot{AggregateID: aggregateID}
	var data []byte

	if scanErr := rows.Scan(&snapshot.AggregateType, &snapshot.SequenceNumber, &data, &snapshot.CreatedAt); scanErr != nil {
		es.logError(ctx, logMsgSnapshotScanFailed, logAttrError, scanErr.Error())
		return empty, errors.Join(eventstore.ErrLoadingSnapshotFailed, eventstore.ErrScanningDBRowFailed, scanErr)
	}

	snapshot.Data = data

	es.recordDuration(ctx, metricDurationSnapshotLoad, duration, metricStatusSuccess)
	es.logOperation(ctx,
		logMsgSnapshotLoaded,
		logAttrAggregateID, aggregateID,
		logAttrSequenceNumber, snapshot.SequenceNumber,
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return snapshot, nil
}

// DeleteSnapshot removes the snapshot for the given aggregate.
// Deleting a snapshot that does not exist is not an error.
func (es EventStore) DeleteSnapshot(ctx context.Context, aggregateID string) error {
	if aggregateID == "" {
		return eventstore.ErrEmptySnapshotAggregateID
	}

	builder := goqu.Dialect(dialectPostgres)

	deleteStmt := builder.
		Delete(es.snapshotTableName).
		Where(goqu.C(colAggregateID).Eq(aggregateID))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		es.logError(ctx, logMsgSnapshotBuildFailed, logAttrError, toSQLErr.Error())
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, eventstore.ErrBuildingQueryFailed, toSQLErr)
	}

	start := time.Now()
	_, execErr := es.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	es.logQueryWithDuration(ctx, sqlQuery, logActionDeleteSnapshot, duration)

	if execErr != nil {
		es.logError(ctx, logMsgSnapshotExecFailed, logAttrError, execErr.Error(), logAttrQuery, sqlQuery)
		return errors.Join(eventstore.ErrDeletingSnapshotFailed, execErr)
	}

	es.logOperation(ctx,
		logMsgSnapshotDeleted,
		logAttrAggregateID, aggregateID,
		logAttrDurationMS, es.durationToMilliseconds(duration))

	return nil
}
