package siteview_test

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
	"github.com/clinforge/trialcore/trial/projection/siteview"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenProjection(t *testing.T) *siteview.Projection {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	view, err := siteview.NewProjection(db, goqu.Dialect("sqlite3"), nil)
	require.NoError(t, err)
	require.NoError(t, view.CreateSchema(context.Background()))

	return view
}

func Test_Apply_RegistrationInsertsAPendingSiteRow(t *testing.T) {
	view := givenProjection(t)
	siteID := uuid.New()

	err := view.Apply(context.Background(),
		core.BuildSiteRegistered(siteID, uuid.New(), "General Hospital", "SITE-001", "alice", fixedTime))
	require.NoError(t, err)

	row, err := view.FindByID(context.Background(), siteID.String())
	require.NoError(t, err)
	assert.Equal(t, "General Hospital", row.Name)
	assert.Equal(t, string(core.SiteStatusPending), row.Status)
}

func Test_Apply_ARedeliveredRegistrationIsSkipped(t *testing.T) {
	view := givenProjection(t)
	siteID := uuid.New()
	event := core.BuildSiteRegistered(siteID, uuid.New(), "General Hospital", "SITE-001", "alice", fixedTime)

	require.NoError(t, view.Apply(context.Background(), event))
	require.NoError(t, view.Apply(context.Background(), event))

	row, err := view.FindByID(context.Background(), siteID.String())
	require.NoError(t, err)
	assert.Equal(t, "General Hospital", row.Name)
}

func Test_Apply_ActivationUpdatesTheStatusColumn(t *testing.T) {
	view := givenProjection(t)
	siteID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildSiteRegistered(siteID, uuid.New(), "General Hospital", "SITE-001", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildSiteStatusChanged(siteID, core.SiteStatusPending, core.SiteStatusActive, "", "alice", fixedTime)))

	row, err := view.FindByID(context.Background(), siteID.String())
	require.NoError(t, err)
	assert.Equal(t, string(core.SiteStatusActive), row.Status)
}

func Test_Apply_UserAssignmentAddsAChildRowOnce(t *testing.T) {
	view := givenProjection(t)
	siteID := uuid.New()
	assigned := core.BuildSiteUserAssigned(siteID, "carol", "INVESTIGATOR", "alice", fixedTime)

	require.NoError(t, view.Apply(context.Background(),
		core.BuildSiteRegistered(siteID, uuid.New(), "General Hospital", "SITE-001", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(), assigned))
	require.NoError(t, view.Apply(context.Background(), assigned))

	assignments, err := view.AssignmentsOf(context.Background(), siteID.String())
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, "carol", assignments[0].UserID)
	assert.Equal(t, "INVESTIGATOR", assignments[0].Role)
}

func Test_Apply_SameUserWithAnotherRoleGetsASecondRow(t *testing.T) {
	view := givenProjection(t)
	siteID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildSiteRegistered(siteID, uuid.New(), "General Hospital", "SITE-001", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildSiteUserAssigned(siteID, "carol", "INVESTIGATOR", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildSiteUserAssigned(siteID, "carol", "COORDINATOR", "alice", fixedTime.Add(time.Minute))))

	assignments, err := view.AssignmentsOf(context.Background(), siteID.String())
	require.NoError(t, err)
	assert.Len(t, assignments, 2)
}
