package protocolversionview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/clinforge/trialcore/eventstore"
	"github.com/clinforge/trialcore/trial/core"
)

const (
	projectionName = "protocol_version_view"
	viewTableName  = "protocol_version_view"

	logMsgDuplicateCreationSkipped = "protocol version view row already exists, skipping creation event"
	logAttrVersionID               = "version_id"
)

var ErrNilViewDB = errors.New("protocol version view requires a database connection")
var ErrUnexpectedEventType = errors.New("protocol version view received an event type it does not handle")

// VersionRow is one row of the protocol version view.
type VersionRow struct {
	VersionID     string    `db:"version_id"`
	StudyID       string    `db:"study_id"`
	VersionNumber string    `db:"version_number"`
	Description   string    `db:"description"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Projection maintains a queryable table of protocol versions per study.
type Projection struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	logger  eventstore.Logger
}

// NewProjection creates the protocol version view over the given connection.
// The dialect must match the connection's database.
func NewProjection(db *sqlx.DB, dialect goqu.DialectWrapper, logger eventstore.Logger) (*Projection, error) {
	if db == nil {
		return nil, ErrNilViewDB
	}

	return &Projection{db: db, dialect: dialect, logger: logger}, nil
}

// CreateSchema creates the view table if it does not exist yet.
func (p *Projection) CreateSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version_id TEXT PRIMARY KEY,
			study_id TEXT NOT NULL,
			version_number TEXT NOT NULL,
			description TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, viewTableName)

	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating protocol version view schema: %w", err)
	}

	return nil
}

func (p *Projection) Name() string {
	return projectionName
}

func (p *Projection) Handles() []core.EventTypeString {
	return []core.EventTypeString{
		core.ProtocolVersionCreatedEventType,
		core.ProtocolVersionStatusChangedEventType,
	}
}

// Apply updates the view inside one transaction per event.
func (p *Projection) Apply(ctx context.Context, event core.DomainEvent) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning protocol version view transaction: %w", err)
	}

	switch actualEvent := event.(type) {
	case core.ProtocolVersionCreated:
		err = p.applyVersionCreated(ctx, tx, actualEvent)
	case core.ProtocolVersionStatusChanged:
		err = p.applyVersionStatusChanged(ctx, tx, actualEvent)
	default:
		err = fmt.Errorf("%w: %s", ErrUnexpectedEventType, event.IsEventType())
	}

	if err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

func (p *Projection) applyVersionCreated(ctx context.Context, tx *sqlx.Tx, event core.ProtocolVersionCreated) error {
	exists, err := p.rowExists(ctx, tx, event.VersionID)
	if err != nil {
		return err
	}

	if exists {
		if p.logger != nil {
			p.logger.Info(logMsgDuplicateCreationSkipped, logAttrVersionID, event.VersionID)
		}

		return nil
	}

	query, args, err := p.dialect.
		Insert(viewTableName).
		Rows(goqu.Record{
			"version_id":     event.VersionID,
			"study_id":       event.StudyID,
			"version_number": event.VersionNumber,
			"description":    event.Description,
			"status":         string(core.ProtocolVersionStatusDraft),
			"created_at":     event.OccurredAt,
			"updated_at":     event.OccurredAt,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building protocol version view insert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting protocol version view row: %w", err)
	}

	return nil
}

func (p *Projection) applyVersionStatusChanged(ctx context.Context, tx *sqlx.Tx, event core.ProtocolVersionStatusChanged) error {
	query, args, err := p.dialect.
		Update(viewTableName).
		Set(goqu.Record{
			"status":     string(event.NewStatus),
			"updated_at": event.OccurredAt,
		}).
		Where(goqu.C("version_id").Eq(event.VersionID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building protocol version view status update: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating protocol version view status: %w", err)
	}

	return nil
}

func (p *Projection) rowExists(ctx context.Context, tx *sqlx.Tx, versionID string) (bool, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select(goqu.COUNT("*")).
		Where(goqu.C("version_id").Eq(versionID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("building protocol version view exists query: %w", err)
	}

	var count int
	if err = tx.QueryRowxContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking protocol version view row: %w", err)
	}

	return count > 0, nil
}

// FindByID returns one protocol version row or sql.ErrNoRows.
func (p *Projection) FindByID(ctx context.Context, versionID string) (VersionRow, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select("version_id", "study_id", "version_number", "description", "status", "created_at", "updated_at").
		Where(goqu.C("version_id").Eq(versionID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return VersionRow{}, fmt.Errorf("building protocol version view query: %w", err)
	}

	var row VersionRow
	if err = p.db.GetContext(ctx, &row, query, args...); err != nil {
		return VersionRow{}, err
	}

	return row, nil
}

// VersionsOfStudy returns all protocol versions of a study, oldest first.
func (p *Projection) VersionsOfStudy(ctx context.Context, studyID string) ([]VersionRow, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select("version_id", "study_id", "version_number", "description", "status", "created_at", "updated_at").
		Where(goqu.C("study_id").Eq(studyID)).
		Order(goqu.C("created_at").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building study versions query: %w", err)
	}

	var rows []VersionRow
	if err = p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("loading versions of study %s: %w", studyID, err)
	}

	return rows, nil
}
