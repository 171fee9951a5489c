package documentview

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
	projectionName = "document_view"
	viewTableName  = "document_view"

	logMsgDuplicateCreationSkipped = "document view row already exists, skipping creation event"
	logAttrDocumentID              = "document_id"
)

var ErrNilViewDB = errors.New("document view requires a database connection")
var ErrUnexpectedEventType = errors.New("document view received an event type it does not handle")

// DocumentRow is one row of the document view.
type DocumentRow struct {
	DocumentID   string    `db:"document_id"`
	StudyID      string    `db:"study_id"`
	DocumentName string    `db:"document_name"`
	DocumentType string    `db:"document_type"`
	FileName     string    `db:"file_name"`
	Status       string    `db:"status"`
	SupersededBy string    `db:"superseded_by"`
	UploadedAt   time.Time `db:"uploaded_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Projection maintains a queryable table of study documents.
type Projection struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
	logger  eventstore.Logger
}

// NewProjection creates the document view over the given connection.
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
			document_id TEXT PRIMARY KEY,
			study_id TEXT NOT NULL,
			document_name TEXT NOT NULL,
			document_type TEXT NOT NULL,
			file_name TEXT NOT NULL,
			status TEXT NOT NULL,
			superseded_by TEXT NOT NULL,
			uploaded_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`, viewTableName)

	if _, err := p.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("creating document view schema: %w", err)
	}

	return nil
}

func (p *Projection) Name() string {
	return projectionName
}

func (p *Projection) Handles() []core.EventTypeString {
	return []core.EventTypeString{
		core.DocumentUploadedEventType,
		core.DocumentStatusChangedEventType,
	}
}

// Apply updates the view inside one transaction per event.
func (p *Projection) Apply(ctx context.Context, event core.DomainEvent) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning document view transaction: %w", err)
	}

	switch actualEvent := event.(type) {
	case core.DocumentUploaded:
		err = p.applyDocumentUploaded(ctx, tx, actualEvent)
	case core.DocumentStatusChanged:
		err = p.applyDocumentStatusChanged(ctx, tx, actualEvent)
	default:
		err = fmt.Errorf("%w: %s", ErrUnexpectedEventType, event.IsEventType())
	}

	if err != nil {
		_ = tx.Rollback()

		return err
	}

	return tx.Commit()
}

func (p *Projection) applyDocumentUploaded(ctx context.Context, tx *sqlx.Tx, event core.DocumentUploaded) error {
	exists, err := p.rowExists(ctx, tx, event.DocumentID)
	if err != nil {
		return err
	}

	if exists {
		if p.logger != nil {
			p.logger.Info(logMsgDuplicateCreationSkipped, logAttrDocumentID, event.DocumentID)
		}

		return nil
	}

	query, args, err := p.dialect.
		Insert(viewTableName).
		Rows(goqu.Record{
			"document_id":   event.DocumentID,
			"study_id":      event.StudyID,
			"document_name": event.DocumentName,
			"document_type": event.DocumentType,
			"file_name":     event.FileName,
			"status":        string(core.DocumentStatusDraft),
			"superseded_by": "",
			"uploaded_at":   event.OccurredAt,
			"updated_at":    event.OccurredAt,
		}).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building document view insert: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting document view row: %w", err)
	}

	return nil
}

func (p *Projection) applyDocumentStatusChanged(ctx context.Context, tx *sqlx.Tx, event core.DocumentStatusChanged) error {
	query, args, err := p.dialect.
		Update(viewTableName).
		Set(goqu.Record{
			"status":        string(event.NewStatus),
			"superseded_by": event.SupersededByDocumentID,
			"updated_at":    event.OccurredAt,
		}).
		Where(goqu.C("document_id").Eq(event.DocumentID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building document view status update: %w", err)
	}

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating document view status: %w", err)
	}

	return nil
}

func (p *Projection) rowExists(ctx context.Context, tx *sqlx.Tx, documentID string) (bool, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select(goqu.COUNT("*")).
		Where(goqu.C("document_id").Eq(documentID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("building document view exists query: %w", err)
	}

	var count int
	if err = tx.QueryRowxContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("checking document view row: %w", err)
	}

	return count > 0, nil
}

// FindByID returns one document row or sql.ErrNoRows.
func (p *Projection) FindByID(ctx context.Context, documentID string) (DocumentRow, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select("document_id", "study_id", "document_name", "document_type", "file_name",
			"status", "superseded_by", "uploaded_at", "updated_at").
		Where(goqu.C("document_id").Eq(documentID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return DocumentRow{}, fmt.Errorf("building document view query: %w", err)
	}

	var row DocumentRow
	if err = p.db.GetContext(ctx, &row, query, args...); err != nil {
		return DocumentRow{}, err
	}

	return row, nil
}

// CurrentDocumentsOfStudy returns a study's documents in CURRENT status.
func (p *Projection) CurrentDocumentsOfStudy(ctx context.Context, studyID string) ([]DocumentRow, error) {
	query, args, err := p.dialect.
		From(viewTableName).
		Select("document_id", "study_id", "document_name", "document_type", "file_name",
			"status", "superseded_by", "uploaded_at", "updated_at").
		Where(
			goqu.C("study_id").Eq(studyID),
			goqu.C("status").Eq(string(core.DocumentStatusCurrent)),
		).
		Order(goqu.C("uploaded_at").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building current documents query: %w", err)
	}

	var rows []DocumentRow
	if err = p.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("loading current documents of study %s: %w", studyID, err)
	}

	return rows, nil
}
