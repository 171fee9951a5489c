package studyview

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
)

const (
	projectionName  = "study_view"
	viewTableName   = "study_view"
	lookupTableName = "study_lookup"

	logMsgDuplicateCreationSkipped = "study view row already exists, skipping creation event"
	logAttrStudyID                 = "study_id"
)

var ErrNilViewDB = errors.New("study view requires a database connection")
var ErrUnexpectedEventType = errors.New("study view received an event type it does not handle")

// StudyRow is one row of the study view.
type StudyRow struct {
	StudyID        string    `db:"study_id"`
	Name           string    `db:"name"`
	Sponsor        string    `db:"sponsor"`
	ProtocolNumber string    `db:"protocol_number"`
	Phase          string    `db:"phase"`
	Status         string    `db:"status"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// Projection maintains a queryable table of studies plus a durable lookup
// from protocol number to study id. The lookup outlives any cache, so a
// cold-started reader can always resolve a protocol number.
type Projection struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	logger  eventstore.Logger
}

// NewProjection creates the study view over the given connection.
// The dialect must match the connection's database.
func NewProjection(db *sqlx.DB, dialect goqu.DialectWrapper, logger eventstore.Logger) (*Projection, error) {
	if db == nil {
		return nil, ErrNilViewDB
	}

	return &Projection{db: db, dialect: dialect, logger: logger}, nil
}

// CreateSchema creates the view and lookup tables if they do not exist yet.
func (p *Projection) CreateSchema(ctx context.Context) error {
	viewDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			study_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sponsor TEXT NOT NULL,
			protocol_number TEXT NOT NULL,
			phase TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, viewTableName)

	lookupDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			protocol_number TEXT PRIMARY KEY,
			study_id TEXT NOT NULL
		)`, lookupTableName)

	for _, ddl := range []string{viewDDL, lookupDDL} {
		if _, err := p.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating study view schema: %w", err)
		}
	}

	return nil
}

func (p *Projection) Name() string {
	return projectionName
}

func (p *Projection) Handles() []core.EventTypeString {
	return []core.EventTypeString{
		core.StudyCreatedEventType,
		core.StudyDetailsUpdatedEventType,
		core.StudyStatusChangedEventType,
	}
}

// Apply updates the view inside one transaction per event.
func (p *Projection) Apply(ctx context.Context, event core.DomainEvent) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning study view transaction: %w", err)
	}

	switch actualEvent := event.(type) {
	case core.StudyCreated:
		err = p.applyStudyCreated(ctx, tx, actualEvent)
	case core.StudyDetailsUpdated:
		err = p.applyStudyDetailsUpdated(ctx, tx, actualEvent)
	case core.StudyStatusChanged:
		err = p.applyStudyStatusChanged(ctx, tx, actualEvent)
	default:
		err = fmt.Errorf("%w: %s", ErrUnexpectedEventType, event.IsEventType())
	}

	if err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

func (p *Projection) applyStudyCreated(ctx context.Context, tx *sqlx.Tx, event core.StudyCreated) error {
	exists, err := p.rowExists(ctx, tx, event.StudyID)
	if err != nil {
		return err
	}

	if exists {
		if p.logger != nil {
			p.logger.Info(logMsgDuplicateCreationSkipped, logAttrStudyID, event.StudyID)
		}

		return nil
	}

	insertQuery, insertArgs, err := p.dialect.
		Insert(viewTableName).
		Rows(goqu.Record{
			"study_id":        event.StudyID,
			"name":            event.Name,
			"sponsor":         event.Sponsor,
			"protocol_number": event.ProtocolNumber,
			"phase":           event.Phase,
			"status":          string(core.StudyStatusPlanning),
			"created_at":      event.OccurredAt,
			"updated_at":      event.OccurredAt,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building study view insert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("inserting study view row: %w", err)
	}

	lookupQuery, lookupArgs, err := p.dialect.
		Insert(lookupTableName).
		Rows(goqu.Record{
			"protocol_number": event.ProtocolNumber,
			"study_id":        event.StudyID,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building study lookup insert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, lookupQuery, lookupArgs...); err != nil {
		return fmt.Errorf("inserting study lookup row: %w", err)
	}

	return nil
}

func (p *Projection) applyStudyDetailsUpdated(ctx context.Context, tx *sqlx.Tx, event core.StudyDetailsUpdated) error {
	record := goqu.Record{"updated_at": event.OccurredAt}

	if event.Name != nil {
		record["name"] = *event.Name
	}

	if event.Sponsor != nil {
		record["sponsor"] = *event.Sponsor
	}

	if event.Phase != nil {
		record["phase"] = *event.Phase
	}

	query, args, err := p.dialect.
		Update(viewTableName).
		Set(record).
		Where(goqu.C("study_id").Eq(event.StudyID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building study view update: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating study view row: %w", err)
	}

	return nil
}

func (p *Projection) applyStudyStatusChanged(ctx context.Context, tx *sqlx.Tx, event core.StudyStatusChanged) error {
	query, args, err := p.dialect.
		Update(viewTableName).
		Set(goqu.Record{
			"status":     string(event.NewStatus),
			"updated_at": event.OccurredAt,
		}).
		Where(goqu.C("study_id").Eq(event.StudyID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building study view status update: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating study view status: %w", err)
	}

	return nil
}

func (p *Projection) rowExists(ctx context.Context, tx *sqlx.Tx, studyID string) (bool, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select(goqu.COUNT("*")).
		Where(goqu.C("study_id").Eq(studyID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("building study view exists query: %w", err)
	}

	var count int
	if err = tx.QueryRowxContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking study view row: %w", err)
	}

	return count > 0, nil
}

// FindByID returns one study row or sql.ErrNoRows.
func (p *Projection) FindByID(ctx context.Context, studyID string) (StudyRow, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select("study_id", "name", "sponsor", "protocol_number", "phase", "status", "created_at", "updated_at").
		Where(goqu.C("study_id").Eq(studyID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return StudyRow{}, fmt.Errorf("building study view query: %w", err)
	}

	var row StudyRow
	if err = p.db.GetContext(ctx, &row, query, args...); err != nil {
		return StudyRow{}, err
	}

	return row, nil
}

// FindStudyIDByProtocolNumber resolves a protocol number through the durable
// lookup table, or returns sql.ErrNoRows.
func (p *Projection) FindStudyIDByProtocolNumber(ctx context.Context, protocolNumber string) (string, error) {
	query, args, err := p.dialect.
		From(lookupTableName).
		Select("study_id").
		Where(goqu.C("protocol_number").Eq(protocolNumber)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return "", fmt.Errorf("building study lookup query: %w", err)
	}

	var studyID string
	err = p.db.QueryRowxContext(ctx, query, args...).Scan(&studyID)

	if errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	if err != nil {
		return "", fmt.Errorf("resolving protocol number %s: %w", protocolNumber, err)
	}

	return studyID, nil
}
