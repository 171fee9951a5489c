package studyview_test

import (
	"context"
	"database/sql"
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
	"github.com/clinforge/trialcore/trial/projection/studyview"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenProjection(t *testing.T) *studyview.Projection {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	view, err := studyview.NewProjection(db, goqu.Dialect("sqlite3"), nil)
	require.NoError(t, err)
	require.NoError(t, view.CreateSchema(context.Background()))

	return view
}

func Test_Apply_StudyCreatedInsertsViewAndLookupRows(t *testing.T) {
	view := givenProjection(t)
	studyID := uuid.New()

	err := view.Apply(context.Background(),
		core.BuildStudyCreated(studyID, "Oncology Pilot", "Acme Pharma", "PROTO-001", "PHASE_2", "alice", fixedTime))
	require.NoError(t, err)

	row, err := view.FindByID(context.Background(), studyID.String())
	require.NoError(t, err)
	assert.Equal(t, "Oncology Pilot", row.Name)
	assert.Equal(t, "PLANNING", row.Status)

	resolvedID, err := view.FindStudyIDByProtocolNumber(context.Background(), "PROTO-001")
	require.NoError(t, err)
	assert.Equal(t, studyID.String(), resolvedID)
}

func Test_Apply_ARedeliveredCreationEventIsSkipped(t *testing.T) {
	view := givenProjection(t)
	studyID := uuid.New()
	event := core.BuildStudyCreated(studyID, "Oncology Pilot", "Acme Pharma", "PROTO-001", "PHASE_2", "alice", fixedTime)

	require.NoError(t, view.Apply(context.Background(), event))
	require.NoError(t, view.Apply(context.Background(), event))

	row, err := view.FindByID(context.Background(), studyID.String())
	require.NoError(t, err)
	assert.Equal(t, "Oncology Pilot", row.Name)
}

func Test_Apply_DetailsUpdateTouchesOnlyChangedFields(t *testing.T) {
	view := givenProjection(t)
	studyID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildStudyCreated(studyID, "Oncology Pilot", "Acme Pharma", "PROTO-001", "PHASE_2", "alice", fixedTime)))

	newName := "Oncology Pivotal"
	require.NoError(t, view.Apply(context.Background(),
		core.BuildStudyDetailsUpdated(studyID, &newName, nil, nil, "alice", fixedTime.Add(time.Hour))))

	row, err := view.FindByID(context.Background(), studyID.String())
	require.NoError(t, err)
	assert.Equal(t, "Oncology Pivotal", row.Name)
	assert.Equal(t, "Acme Pharma", row.Sponsor)
	assert.Equal(t, "PHASE_2", row.Phase)
}

func Test_Apply_StatusChangeUpdatesTheStatusColumn(t *testing.T) {
	view := givenProjection(t)
	studyID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildStudyCreated(studyID, "Oncology Pilot", "Acme Pharma", "PROTO-001", "PHASE_2", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildStudyStatusChanged(studyID, core.StudyStatusPlanning, core.StudyStatusRegulatorySubmission, "", "alice", fixedTime)))

	row, err := view.FindByID(context.Background(), studyID.String())
	require.NoError(t, err)
	assert.Equal(t, string(core.StudyStatusRegulatorySubmission), row.Status)
}

func Test_FindStudyIDByProtocolNumber_UnknownNumberReturnsNoRows(t *testing.T) {
	view := givenProjection(t)

	_, err := view.FindStudyIDByProtocolNumber(context.Background(), "PROTO-404")

	assert.ErrorIs(t, err, sql.ErrNoRows)
}
