package documentview_test

import (
	"context"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect import
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure-Go sqlite driver

	"github.com/clinforge/trialcore/trial/core"
	"github.com/clinforge/trialcore/trial/projection/documentview"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenProjection(t *testing.T) *documentview.Projection {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	view, err := documentview.NewProjection(db, goqu.Dialect("sqlite3"), nil)
	require.NoError(t, err)
	require.NoError(t, view.CreateSchema(context.Background()))

	return view
}

func Test_Apply_UploadInsertsADraftDocumentRow(t *testing.T) {
	view := givenProjection(t)
	documentID := uuid.New()

	err := view.Apply(context.Background(),
		core.BuildDocumentUploaded(documentID, uuid.New(), "Informed Consent Form", "CONSENT", "icf_v1.pdf", "alice", fixedTime))
	require.NoError(t, err)

	row, err := view.FindByID(context.Background(), documentID.String())
	require.NoError(t, err)
	assert.Equal(t, "Informed Consent Form", row.DocumentName)
	assert.Equal(t, string(core.DocumentStatusDraft), row.Status)
}

func Test_Apply_ARedeliveredUploadIsSkipped(t *testing.T) {
	view := givenProjection(t)
	documentID := uuid.New()
	event := core.BuildDocumentUploaded(documentID, uuid.New(), "Informed Consent Form", "CONSENT", "icf_v1.pdf", "alice", fixedTime)

	require.NoError(t, view.Apply(context.Background(), event))
	require.NoError(t, view.Apply(context.Background(), event))

	row, err := view.FindByID(context.Background(), documentID.String())
	require.NoError(t, err)
	assert.Equal(t, "Informed Consent Form", row.DocumentName)
}

func Test_Apply_SupersessionRecordsTheReplacingDocument(t *testing.T) {
	view := givenProjection(t)
	documentID := uuid.New()
	replacementID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildDocumentUploaded(documentID, uuid.New(), "Informed Consent Form", "CONSENT", "icf_v1.pdf", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildDocumentStatusChanged(documentID, core.DocumentStatusDraft, core.DocumentStatusCurrent, "", "", "bob", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildDocumentStatusChanged(documentID, core.DocumentStatusCurrent, core.DocumentStatusSuperseded,
			replacementID.String(), "", "bob", fixedTime)))

	row, err := view.FindByID(context.Background(), documentID.String())
	require.NoError(t, err)
	assert.Equal(t, string(core.DocumentStatusSuperseded), row.Status)
	assert.Equal(t, replacementID.String(), row.SupersededBy)
}

func Test_CurrentDocumentsOfStudy_ExcludesDraftsAndSupersededDocuments(t *testing.T) {
	view := givenProjection(t)
	studyID := uuid.New()
	currentID := uuid.New()
	draftID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildDocumentUploaded(currentID, studyID, "Protocol", "PROTOCOL", "protocol_v2.pdf", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildDocumentStatusChanged(currentID, core.DocumentStatusDraft, core.DocumentStatusCurrent, "", "", "bob", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildDocumentUploaded(draftID, studyID, "Budget", "OTHER", "budget.xlsx", "alice", fixedTime)))

	rows, err := view.CurrentDocumentsOfStudy(context.Background(), studyID.String())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, currentID.String(), rows[0].DocumentID)
}
