package projection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/clinforge/trialcore/eventstore"
)

const (
	defaultCursorTableName     = "projection_cursors"
	defaultCheckpointTableName = "projection_checkpoints"

	colProjectionName = "projection_name"
	colLastPosition   = "last_position"
	colLastSequence   = "last_sequence"
	colCheckpointAgg  = "aggregate_id"
)

var ErrEmptyCheckpointTableName = errors.New("checkpoint table name must not be empty")
var ErrNilCheckpointDB = errors.New("checkpoint store requires a database connection")

// SQLCheckpointStore is a CheckpointStore persisted in two relational tables:
// one row per projection for the position cursor and one row per
// (projection, aggregate) for the last applied sequence.
//
// It works against PostgreSQL and SQLite through the goqu dialect given at
// construction time.
type SQLCheckpointStore struct {
	db              *sqlx.DB
	dialect         goqu.DialectWrapper
	cursorTable     string
	checkpointTable string
}

// SQLCheckpointOption defines a functional option for configuring SQLCheckpointStore.
type SQLCheckpointOption func(*SQLCheckpointStore) error

// WithCursorTableName overrides the table holding per-projection cursors.
func WithCursorTableName(tableName string) SQLCheckpointOption {
	return func(s *SQLCheckpointStore) error {
		if tableName == "" {
			return ErrEmptyCheckpointTableName
		}

		s.cursorTable = tableName

		return nil
	}
}

// WithCheckpointTableName overrides the table holding per-aggregate sequences.
func WithCheckpointTableName(tableName string) SQLCheckpointOption {
	return func(s *SQLCheckpointStore) error {
		if tableName == "" {
			return ErrEmptyCheckpointTableName
		}

		s.checkpointTable = tableName

		return nil
	}
}

// NewSQLCheckpointStore creates a checkpoint store on the given connection.
// The dialect must match the connection's database.
func NewSQLCheckpointStore(db *sqlx.DB, dialect goqu.DialectWrapper, options ...SQLCheckpointOption) (*SQLCheckpointStore, error) {
	if db == nil {
		return nil, ErrNilCheckpointDB
	}

	store := &SQLCheckpointStore{
		db:              db,
		dialect:         dialect,
		cursorTable:     defaultCursorTableName,
		checkpointTable: defaultCheckpointTableName,
	}

	for _, option := range options {
		if err := option(store); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// CreateSchema creates the checkpoint tables if they do not exist yet.
func (s *SQLCheckpointStore) CreateSchema(ctx context.Context) error {
	cursorDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s TEXT PRIMARY KEY,
			%s BIGINT NOT NULL
		)`,
		s.cursorTable, colProjectionName, colLastPosition)

	checkpointDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			%s TEXT NOT NULL,
			%s TEXT NOT NULL,
			%s BIGINT NOT NULL,
			PRIMARY KEY (%s, %s)
		)`,
		s.checkpointTable, colProjectionName, colCheckpointAgg, colLastSequence,
		colProjectionName, colCheckpointAgg)

	for _, ddl := range []string{cursorDDL, checkpointDDL} {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating checkpoint schema: %w", err)
		}
	}

	return nil
}

// LoadPosition returns the cursor for a projection, 0 when no row exists.
func (s *SQLCheckpointStore) LoadPosition(ctx context.Context, projectionName string) (eventstore.GlobalPositionUint64, error) {
	query, args, err := s.dialect.
		From(s.cursorTable).
		Select(colLastPosition).
		Where(goqu.C(colProjectionName).Eq(projectionName)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building cursor query: %w", err)
	}

	var position eventstore.GlobalPositionUint64
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&position)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("loading cursor for %s: %w", projectionName, err)
	}

	return position, nil
}

// SavePosition stores the cursor for a projection.
func (s *SQLCheckpointStore) SavePosition(ctx context.Context, projectionName string, position eventstore.GlobalPositionUint64) error {
	updateQuery, updateArgs, err := s.dialect.
		Update(s.cursorTable).
		Set(goqu.Record{colLastPosition: position}).
		Where(goqu.C(colProjectionName).Eq(projectionName)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building cursor update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return fmt.Errorf("saving cursor for %s: %w", projectionName, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving cursor for %s: %w", projectionName, err)
	}

	if rowsAffected > 0 {
		return nil
	}

	insertQuery, insertArgs, err := s.dialect.
		Insert(s.cursorTable).
		Rows(goqu.Record{colProjectionName: projectionName, colLastPosition: position}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building cursor insert: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("saving cursor for %s: %w", projectionName, err)
	}

	return nil
}

// LastSequence returns the last applied sequence for (projection, aggregate), 0 when no row exists.
func (s *SQLCheckpointStore) LastSequence(ctx context.Context, projectionName string, aggregateID string) (eventstore.StreamVersionUint, error) {
	query, args, err := s.dialect.
		From(s.checkpointTable).
		Select(colLastSequence).
		Where(
			goqu.C(colProjectionName).Eq(projectionName),
			goqu.C(colCheckpointAgg).Eq(aggregateID),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building sequence query: %w", err)
	}

	var sequence eventstore.StreamVersionUint
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&sequence)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}

	if err != nil {
		return 0, fmt.Errorf("loading sequence for %s/%s: %w", projectionName, aggregateID, err)
	}

	return sequence, nil
}

// SaveSequence stores the last applied sequence for (projection, aggregate).
func (s *SQLCheckpointStore) SaveSequence(ctx context.Context, projectionName string, aggregateID string, sequence eventstore.StreamVersionUint) error {
	updateQuery, updateArgs, err := s.dialect.
		Update(s.checkpointTable).
		Set(goqu.Record{colLastSequence: sequence}).
		Where(
			goqu.C(colProjectionName).Eq(projectionName),
			goqu.C(colCheckpointAgg).Eq(aggregateID),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building sequence update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, updateQuery, updateArgs...)
	if err != nil {
		return fmt.Errorf("saving sequence for %s/%s: %w", projectionName, aggregateID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving sequence for %s/%s: %w", projectionName, aggregateID, err)
	}

	if rowsAffected > 0 {
		return nil
	}

	insertQuery, insertArgs, err := s.dialect.
		Insert(s.checkpointTable).
		Rows(goqu.Record{
			colProjectionName: projectionName,
			colCheckpointAgg:  aggregateID,
			colLastSequence:   sequence,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building sequence insert: %w", err)
	}

	if _, err = s.db.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("saving sequence for %s/%s: %w", projectionName, aggregateID, err)
	}

	return nil
}
