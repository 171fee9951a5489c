package siteview

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
	projectionName       = "site_view"
	viewTableName        = "site_view"
	assignmentsTableName = "site_user_assignments"

	logMsgDuplicateCreationSkipped   = "site view row already exists, skipping creation event"
	logMsgDuplicateAssignmentSkipped = "assignment row already exists, skipping assignment event"
	logAttrSiteID                    = "site_id"
	logAttrUserID                    = "user_id"
)

var ErrNilViewDB = errors.New("site view requires a database connection")
var ErrUnexpectedEventType = errors.New("site view received an event type it does not handle")

// SiteRow is one row of the site view.
type SiteRow struct {
	SiteID       string    `db:"site_id"`
	StudyID      string    `db:"study_id"`
	Name         string    `db:"name"`
	SiteNumber   string    `db:"site_number"`
	Status       string    `db:"status"`
	RegisteredAt time.Time `db:"registered_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// AssignmentRow is one row of the user assignments child table.
type AssignmentRow struct {
	SiteID     string    `db:"site_id"`
	UserID     string    `db:"user_id"`
	Role       string    `db:"role"`
	AssignedAt time.Time `db:"assigned_at"`
}

// Projection maintains a queryable table of clinical sites and a child table
// of their user assignments.
type Projection struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	logger  eventstore.Logger
}

// NewProjection creates the site view over the given connection.
// The dialect must match the connection's database.
func NewProjection(db *sqlx.DB, dialect goqu.DialectWrapper, logger eventstore.Logger) (*Projection, error) {
	if db == nil {
		return nil, ErrNilViewDB
	}

	return &Projection{db: db, dialect: dialect, logger: logger}, nil
}

// CreateSchema creates the view tables if they do not exist yet.
func (p *Projection) CreateSchema(ctx context.Context) error {
	viewDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			site_id TEXT PRIMARY KEY,
			study_id TEXT NOT NULL,
			name TEXT NOT NULL,
			site_number TEXT NOT NULL,
			status TEXT NOT NULL,
			registered_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, viewTableName)

	assignmentsDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			site_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			assigned_at TIMESTAMP NOT NULL,
			PRIMARY KEY (site_id, user_id, role)
		)`, assignmentsTableName)

	for _, ddl := range []string{viewDDL, assignmentsDDL} {
		if _, err := p.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating site view schema: %w", err)
		}
	}

	return nil
}

func (p *Projection) Name() string {
	return projectionName
}

func (p *Projection) Handles() []core.EventTypeString {
	return []core.EventTypeString{
		core.SiteRegisteredEventType,
		core.SiteStatusChangedEventType,
		core.SiteUserAssignedEventType,
	}
}

// Apply updates the view inside one transaction per event.
func (p *Projection) Apply(ctx context.Context, event core.DomainEvent) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning site view transaction: %w", err)
	}

	switch actualEvent := event.(type) {
	case core.SiteRegistered:
		err = p.applySiteRegistered(ctx, tx, actualEvent)
	case core.SiteStatusChanged:
		err = p.applySiteStatusChanged(ctx, tx, actualEvent)
	case core.SiteUserAssigned:
		err = p.applySiteUserAssigned(ctx, tx, actualEvent)
	default:
		err = fmt.Errorf("%w: %s", ErrUnexpectedEventType, event.IsEventType())
	}

	if err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

func (p *Projection) applySiteRegistered(ctx context.Context, tx *sqlx.Tx, event core.SiteRegistered) error {
	exists, err := p.rowExists(ctx, tx, viewTableName, goqu.Ex{"site_id": event.SiteID})
	if err != nil {
		return err
	}

	if exists {
		if p.logger != nil {
			p.logger.Info(logMsgDuplicateCreationSkipped, logAttrSiteID, event.SiteID)
		}

		return nil
	}

	query, args, err := p.dialect.
		Insert(viewTableName).
		Rows(goqu.Record{
			"site_id":       event.SiteID,
			"study_id":      event.StudyID,
			"name":          event.Name,
			"site_number":   event.SiteNumber,
			"status":        string(core.SiteStatusPending),
			"registered_at": event.OccurredAt,
			"updated_at":    event.OccurredAt,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building site view insert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting site view row: %w", err)
	}

	return nil
}

func (p *Projection) applySiteStatusChanged(ctx context.Context, tx *sqlx.Tx, event core.SiteStatusChanged) error {
	query, args, err := p.dialect.
		Update(viewTableName).
		Set(goqu.Record{
			"status":     string(event.NewStatus),
			"updated_at": event.OccurredAt,
		}).
		Where(goqu.C("site_id").Eq(event.SiteID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building site view status update: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating site view status: %w", err)
	}

	return nil
}

func (p *Projection) applySiteUserAssigned(ctx context.Context, tx *sqlx.Tx, event core.SiteUserAssigned) error {
	exists, err := p.rowExists(ctx, tx, assignmentsTableName,
		goqu.Ex{"site_id": event.SiteID, "user_id": event.UserID, "role": event.Role})
	if err != nil {
		return err
	}

	if exists {
		if p.logger != nil {
			p.logger.Info(logMsgDuplicateAssignmentSkipped,
				logAttrSiteID, event.SiteID, logAttrUserID, event.UserID)
		}

		return nil
	}

	query, args, err := p.dialect.
		Insert(assignmentsTableName).
		Rows(goqu.Record{
			"site_id":     event.SiteID,
			"user_id":     event.UserID,
			"role":        event.Role,
			"assigned_at": event.OccurredAt,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building assignment insert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting assignment row: %w", err)
	}

	return nil
}

func (p *Projection) rowExists(ctx context.Context, tx *sqlx.Tx, table string, condition goqu.Ex) (bool, error) {
	query, args, err := p.dialect.
		From(table).
		Select(goqu.COUNT("*")).
		Where(condition).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("building exists query for %s: %w", table, err)
	}

	var count int
	if err = tx.QueryRowxContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking row in %s: %w", table, err)
	}

	return count > 0, nil
}

// FindByID returns one site row or sql.ErrNoRows.
func (p *Projection) FindByID(ctx context.Context, siteID string) (SiteRow, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select("site_id", "study_id", "name", "site_number", "status", "registered_at", "updated_at").
		Where(goqu.C("site_id").Eq(siteID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return SiteRow{}, fmt.Errorf("building site view query: %w", err)
	}

	var row SiteRow
	if err = p.db.GetContext(ctx, &row, query, args...); err != nil {
		return SiteRow{}, err
	}

	return row, nil
}

// AssignmentsOf returns all user assignments of a site, oldest first.
func (p *Projection) AssignmentsOf(ctx context.Context, siteID string) ([]AssignmentRow, error) {
	query, args, err := p.dialect.
		From(assignmentsTableName).
		Select("site_id", "user_id", "role", "assigned_at").
		Where(goqu.C("site_id").Eq(siteID)).
		Order(goqu.C("assigned_at").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building assignments query: %w", err)
	}

	var rows []AssignmentRow
	if err = p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("loading assignments of %s: %w", siteID, err)
	}

	return rows, nil
}
