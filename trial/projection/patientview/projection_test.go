package patientview_test

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
	"github.com/clinforge/trialcore/trial/projection/patientview"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
var dateOfBirth = time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)

func givenProjection(t *testing.T) *patientview.Projection {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	view, err := patientview.NewProjection(db, goqu.Dialect("sqlite3"), nil)
	require.NoError(t, err)
	require.NoError(t, view.CreateSchema(context.Background()))

	return view
}

func Test_Apply_RegistrationInsertsAPatientRow(t *testing.T) {
	view := givenProjection(t)
	patientID := uuid.New()

	err := view.Apply(context.Background(),
		core.BuildPatientRegistered(patientID, "SCR-0001", dateOfBirth, "", "pat@example.com", "alice", fixedTime))
	require.NoError(t, err)

	row, err := view.FindByID(context.Background(), patientID.String())
	require.NoError(t, err)
	assert.Equal(t, "SCR-0001", row.ScreeningNumber)
	assert.Equal(t, string(core.PatientStatusRegistered), row.Status)
}

func Test_Apply_ARedeliveredRegistrationIsSkipped(t *testing.T) {
	view := givenProjection(t)
	patientID := uuid.New()
	event := core.BuildPatientRegistered(patientID, "SCR-0001", dateOfBirth, "", "pat@example.com", "alice", fixedTime)

	require.NoError(t, view.Apply(context.Background(), event))
	require.NoError(t, view.Apply(context.Background(), event))

	row, err := view.FindByID(context.Background(), patientID.String())
	require.NoError(t, err)
	assert.Equal(t, "SCR-0001", row.ScreeningNumber)
}

func Test_Apply_EnrollmentAddsAChildRowAndMarksThePatientEnrolled(t *testing.T) {
	view := givenProjection(t)
	patientID := uuid.New()
	studyID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildPatientRegistered(patientID, "SCR-0001", dateOfBirth, "", "pat@example.com", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildPatientEnrolled(patientID, studyID, uuid.New(), "ENR-0001", "alice", fixedTime)))

	row, err := view.FindByID(context.Background(), patientID.String())
	require.NoError(t, err)
	assert.Equal(t, string(core.PatientStatusEnrolled), row.Status)

	enrollments, err := view.EnrollmentsOf(context.Background(), patientID.String())
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, studyID.String(), enrollments[0].StudyID)
	assert.Equal(t, "ENR-0001", enrollments[0].EnrollmentNumber)
}

func Test_Apply_ARedeliveredEnrollmentDoesNotDuplicateTheChildRow(t *testing.T) {
	view := givenProjection(t)
	patientID := uuid.New()
	studyID := uuid.New()
	enrolled := core.BuildPatientEnrolled(patientID, studyID, uuid.New(), "ENR-0001", "alice", fixedTime)

	require.NoError(t, view.Apply(context.Background(),
		core.BuildPatientRegistered(patientID, "SCR-0001", dateOfBirth, "", "pat@example.com", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(), enrolled))
	require.NoError(t, view.Apply(context.Background(), enrolled))

	enrollments, err := view.EnrollmentsOf(context.Background(), patientID.String())
	require.NoError(t, err)
	assert.Len(t, enrollments, 1)
}

func Test_Apply_StatusChangeUpdatesTheStatusColumn(t *testing.T) {
	view := givenProjection(t)
	patientID := uuid.New()

	require.NoError(t, view.Apply(context.Background(),
		core.BuildPatientRegistered(patientID, "SCR-0001", dateOfBirth, "", "pat@example.com", "alice", fixedTime)))
	require.NoError(t, view.Apply(context.Background(),
		core.BuildPatientStatusChanged(patientID, core.PatientStatusRegistered, core.PatientStatusScreening, "", "alice", fixedTime)))

	row, err := view.FindByID(context.Background(), patientID.String())
	require.NoError(t, err)
	assert.Equal(t, string(core.PatientStatusScreening), row.Status)
}
