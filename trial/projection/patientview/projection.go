package patientview

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
	projectionName       = "patient_view"
	viewTableName        = "patient_view"
	enrollmentsTableName = "patient_enrollments"

	logMsgDuplicateCreationSkipped   = "patient view row already exists, skipping creation event"
	logMsgDuplicateEnrollmentSkipped = "enrollment row already exists, skipping enrollment event"
	logAttrPatientID                 = "patient_id"
	logAttrStudyID                   = "study_id"
)

var ErrNilViewDB = errors.New("patient view requires a database connection")
var ErrUnexpectedEventType = errors.New("patient view received an event type it does not handle")

// PatientRow is one row of the patient view.
type PatientRow struct {
	PatientID       string    `db:"patient_id"`
	ScreeningNumber string    `db:"screening_number"`
	DateOfBirth     time.Time `db:"date_of_birth"`
	PhoneNumber     string    `db:"phone_number"`
	Email           string    `db:"email"`
	Status          string    `db:"status"`
	RegisteredAt    time.Time `db:"registered_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// EnrollmentRow is one row of the enrollments child table.
type EnrollmentRow struct {
	PatientID        string    `db:"patient_id"`
	StudyID          string    `db:"study_id"`
	SiteID           string    `db:"site_id"`
	EnrollmentNumber string    `db:"enrollment_number"`
	EnrolledAt       time.Time `db:"enrolled_at"`
}

// Projection maintains a queryable table of patients and a child table of
// their study enrollments.
type Projection struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	logger  eventstore.Logger
}

// NewProjection creates the patient view over the given connection.
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
			patient_id TEXT PRIMARY KEY,
			screening_number TEXT NOT NULL,
			date_of_birth TIMESTAMP NOT NULL,
			phone_number TEXT NOT NULL,
			email TEXT NOT NULL,
			status TEXT NOT NULL,
			registered_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, viewTableName)

	enrollmentsDDL := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			patient_id TEXT NOT NULL,
			study_id TEXT NOT NULL,
			site_id TEXT NOT NULL,
			enrollment_number TEXT NOT NULL,
			enrolled_at TIMESTAMP NOT NULL,
			PRIMARY KEY (patient_id, study_id)
		)`, enrollmentsTableName)

	for _, ddl := range []string{viewDDL, enrollmentsDDL} {
		if _, err := p.db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("creating patient view schema: %w", err)
		}
	}

	return nil
}

func (p *Projection) Name() string {
	return projectionName
}

func (p *Projection) Handles() []core.EventTypeString {
	return []core.EventTypeString{
		core.PatientRegisteredEventType,
		core.PatientEnrolledEventType,
		core.PatientStatusChangedEventType,
	}
}

// Apply updates the view inside one transaction per event.
func (p *Projection) Apply(ctx context.Context, event core.DomainEvent) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning patient view transaction: %w", err)
	}

	switch actualEvent := event.(type) {
	case core.PatientRegistered:
		err = p.applyPatientRegistered(ctx, tx, actualEvent)
	case core.PatientEnrolled:
		err = p.applyPatientEnrolled(ctx, tx, actualEvent)
	case core.PatientStatusChanged:
		err = p.applyPatientStatusChanged(ctx, tx, actualEvent)
	default:
		err = fmt.Errorf("%w: %s", ErrUnexpectedEventType, event.IsEventType())
	}

	if err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

func (p *Projection) applyPatientRegistered(ctx context.Context, tx *sqlx.Tx, event core.PatientRegistered) error {
	exists, err := p.rowExists(ctx, tx, viewTableName, goqu.Ex{"patient_id": event.PatientID})
	if err != nil {
		return err
	}

	if exists {
		if p.logger != nil {
			p.logger.Info(logMsgDuplicateCreationSkipped, logAttrPatientID, event.PatientID)
		}

		return nil
	}

	query, args, err := p.dialect.
		Insert(viewTableName).
		Rows(goqu.Record{
			"patient_id":       event.PatientID,
			"screening_number": event.ScreeningNumber,
			"date_of_birth":    event.DateOfBirth,
			"phone_number":     event.PhoneNumber,
			"email":            event.Email,
			"status":           string(core.PatientStatusRegistered),
			"registered_at":    event.OccurredAt,
			"updated_at":       event.OccurredAt,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building patient view insert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting patient view row: %w", err)
	}

	return nil
}

func (p *Projection) applyPatientEnrolled(ctx context.Context, tx *sqlx.Tx, event core.PatientEnrolled) error {
	exists, err := p.rowExists(ctx, tx, enrollmentsTableName,
		goqu.Ex{"patient_id": event.PatientID, "study_id": event.StudyID})
	if err != nil {
		return err
	}

	if exists {
		if p.logger != nil {
			p.logger.Info(logMsgDuplicateEnrollmentSkipped,
				logAttrPatientID, event.PatientID, logAttrStudyID, event.StudyID)
		}

		return nil
	}

	insertQuery, insertArgs, err := p.dialect.
		Insert(enrollmentsTableName).
		Rows(goqu.Record{
			"patient_id":        event.PatientID,
			"study_id":          event.StudyID,
			"site_id":           event.SiteID,
			"enrollment_number": event.EnrollmentNumber,
			"enrolled_at":       event.OccurredAt,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building enrollment insert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("inserting enrollment row: %w", err)
	}

	updateQuery, updateArgs, err := p.dialect.
		Update(viewTableName).
		Set(goqu.Record{
			"status":     string(core.PatientStatusEnrolled),
			"updated_at": event.OccurredAt,
		}).
		Where(goqu.C("patient_id").Eq(event.PatientID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building patient view enrollment update: %w", err)
	}

	if _, err = tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
		return fmt.Errorf("updating patient view on enrollment: %w", err)
	}

	return nil
}

func (p *Projection) applyPatientStatusChanged(ctx context.Context, tx *sqlx.Tx, event core.PatientStatusChanged) error {
	query, args, err := p.dialect.
		Update(viewTableName).
		Set(goqu.Record{
			"status":     string(event.NewStatus),
			"updated_at": event.OccurredAt,
		}).
		Where(goqu.C("patient_id").Eq(event.PatientID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building patient view status update: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating patient view status: %w", err)
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

// FindByID returns one patient row or sql.ErrNoRows.
func (p *Projection) FindByID(ctx context.Context, patientID string) (PatientRow, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select("patient_id", "screening_number", "date_of_birth", "phone_number", "email",
			"status", "registered_at", "updated_at").
		Where(goqu.C("patient_id").Eq(patientID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return PatientRow{}, fmt.Errorf("building patient view query: %w", err)
	}

	var row PatientRow
	if err = p.db.GetContext(ctx, &row, query, args...); err != nil {
		return PatientRow{}, err
	}

	return row, nil
}

// EnrollmentsOf returns all enrollments of a patient, oldest first.
func (p *Projection) EnrollmentsOf(ctx context.Context, patientID string) ([]EnrollmentRow, error) {
	query, args, err := p.dialect.
		From(enrollmentsTableName).
		Select("patient_id", "study_id", "site_id", "enrollment_number", "enrolled_at").
		Where(goqu.C("patient_id").Eq(patientID)).
		Order(goqu.C("enrolled_at").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building enrollments query: %w", err)
	}

	var rows []EnrollmentRow
	if err = p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("loading enrollments of %s: %w", patientID, err)
	}

	return rows, nil
}
