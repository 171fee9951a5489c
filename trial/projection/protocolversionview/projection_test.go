package protocolversionview_test

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
	"github.com/clinforge/trialcore/trial/projection/protocolversionview"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenProjection(t *testing.T) *protocolversionview.Projection {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	view, err := protocolversionview.NewProjection(db, goqu.Dialect("sqlite3"), nil)
	require.NoError(t, err)
	require.NoError(t, view.CreateSchema(context.Background()))

	return view
}

func Test_Apply_CreationInsertsADraftVersionRow(t *testing.T) {
	view := givenProjection(t)
	versionID := uuid.New()
	studyID := uuid.New()

	err := view.Apply(context.Background(),
		core.BuildProtocolVersionCreated(versionID, studyID, "2.0", "dose escalation amendment", "alice", fixedTime))
	require.NoError(t, err)

	row, err := view.FindByID(context.Background(), versionID.String())
	require.NoError(t, err)
	assert.Equal(t, "2.0", row.VersionNumber)
	assert.Equal(t, string(core.ProtocolVersionStatusDraft), row.Status)
}

func Test_Apply_ARedeliveredCreationEventIsSkipped(t *testing.T) {
	view := givenProjection(t)
	versionID := uuid.New()
	event := core.BuildProtocolVersionCreated(versionID, uuid.New(), "2.0", "", "alice", fixedTime)

	require.NoError(t, view.Apply(context.Background(), event))
	require.NoError(t, view.Apply(context.Background(), event))

	row, err := view.FindByID(context.Background(), versionID.String())
	require.NoError(t, err)
	assert.Equal(t, "2.0", row.VersionNumber)
}

func Test_Apply_StatusChangesTrackTheLifecycle(t *testing.T) {
	view := givenProjection(t)
	versionID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildProtocolVersionCreated(versionID, uuid.New(), "2.0", "", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildProtocolVersionStatusChanged(versionID, core.ProtocolVersionStatusDraft,
			core.ProtocolVersionStatusSubmitted, "", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildProtocolVersionStatusChanged(versionID, core.ProtocolVersionStatusSubmitted,
			core.ProtocolVersionStatusApproved, "", "bob", fixedTime)))

	row, err := view.FindByID(context.Background(), versionID.String())
	require.NoError(t, err)
	assert.Equal(t, string(core.ProtocolVersionStatusApproved), row.Status)
}

func Test_VersionsOfStudy_ReturnsAllVersionsOfOneStudy(t *testing.T) {
	view := givenProjection(t)
	studyID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildProtocolVersionCreated(uuid.New(), studyID, "1.0", "", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildProtocolVersionCreated(uuid.New(), studyID, "2.0", "", "alice", fixedTime.Add(time.Hour))))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildProtocolVersionCreated(uuid.New(), uuid.New(), "1.0", "", "alice", fixedTime)))

	rows, err := view.VersionsOfStudy(context.Background(), studyID.String())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1.0", rows[0].VersionNumber)
	assert.Equal(t, "2.0", rows[1].VersionNumber)
}
