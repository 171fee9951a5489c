package enrollpatient_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/trial/command/enrollpatient"
	"github.com/clinforge/trialcore/trial/core"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenRegisteredPatient(patientID uuid.UUID) core.DomainEvents {
	return core.DomainEvents{
		core.BuildPatientRegistered(patientID, "SCR-001", fixedTime.AddDate(-40, 0, 0), "+4917212345", "", "carol", fixedTime),
	}
}

func Test_Decide_EnrollsARegisteredPatient(t *testing.T) {
	patientID := uuid.New()
	command := enrollpatient.BuildCommand(patientID, uuid.New(), uuid.New(), "ENR-001", "carol", fixedTime)

	result, err := enrollpatient.Decide(givenRegisteredPatient(patientID), command)

	require.NoError(t, err)
	require.True(t, result.HasEventsToAppend())
	assert.Equal(t, core.PatientEnrolledEventType, result.Events[0].IsEventType())
}

func Test_Decide_RejectsDoubleEnrollmentInTheSameStudy(t *testing.T) {
	patientID := uuid.New()
	studyID := uuid.New()
	history := append(givenRegisteredPatient(patientID),
		core.BuildPatientEnrolled(patientID, studyID, uuid.New(), "ENR-001", "carol", fixedTime))
	command := enrollpatient.BuildCommand(patientID, studyID, uuid.New(), "ENR-002", "carol", fixedTime)

	result, err := enrollpatient.Decide(history, command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
	assert.True(t, core.IsValidationError(result.HasError()))
	assert.Empty(t, result.Events)
}

func Test_Decide_RejectsEnrollmentInASecondStudyWhileEnrolled(t *testing.T) {
	patientID := uuid.New()
	history := append(givenRegisteredPatient(patientID),
		core.BuildPatientEnrolled(patientID, uuid.New(), uuid.New(), "ENR-001", "carol", fixedTime))
	command := enrollpatient.BuildCommand(patientID, uuid.New(), uuid.New(), "ENR-002", "carol", fixedTime)

	result, err := enrollpatient.Decide(history, command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
}

func Test_Decide_RejectsEnrollmentOfAWithdrawnPatient(t *testing.T) {
	patientID := uuid.New()
	history := append(givenRegisteredPatient(patientID),
		core.BuildPatientStatusChanged(patientID, core.PatientStatusRegistered, core.PatientStatusWithdrawn,
			"moved abroad", "carol", fixedTime))
	command := enrollpatient.BuildCommand(patientID, uuid.New(), uuid.New(), "ENR-001", "carol", fixedTime)

	result, err := enrollpatient.Decide(history, command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
}

func Test_Decide_RejectsNonexistentPatient(t *testing.T) {
	command := enrollpatient.BuildCommand(uuid.New(), uuid.New(), uuid.New(), "ENR-001", "carol", fixedTime)

	result, err := enrollpatient.Decide(core.DomainEvents{}, command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
}
