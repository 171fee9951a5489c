package changestudystatus_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinforge/trialcore/trial/command/changestudystatus"
	"github.com/clinforge/trialcore/trial/core"
)

var fixedTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func givenPlannedStudy(studyID uuid.UUID) core.DomainEvents {
	return core.DomainEvents{
		core.BuildStudyCreated(studyID, "Hypertension Phase II", "Medix", "PROT-001", "II", "alice", fixedTime),
	}
}

func Test_Decide_AcceptsLegalTransition(t *testing.T) {
	studyID := uuid.New()
	command := changestudystatus.BuildCommand(studyID, core.StudyStatusIRBReview, "", "alice", fixedTime)

	result, err := changestudystatus.Decide(givenPlannedStudy(studyID), command)

	require.NoError(t, err)
	require.True(t, result.HasEventsToAppend())
	event, ok := result.Events[0].(core.StudyStatusChanged)
	require.True(t, ok)
	assert.Equal(t, core.StudyStatusPlanning, event.OldStatus)
	assert.Equal(t, core.StudyStatusIRBReview, event.NewStatus)
}

func Test_Decide_RejectsSkippingToActiveAndListsValidNext(t *testing.T) {
	studyID := uuid.New()
	command := changestudystatus.BuildCommand(studyID, core.StudyStatusActive, "", "alice", fixedTime)

	result, err := changestudystatus.Decide(givenPlannedStudy(studyID), command)

	require.NoError(t, err)
	decisionErr := result.HasError()
	require.Error(t, decisionErr)
	assert.True(t, core.IsValidationError(decisionErr))
	assert.Contains(t, decisionErr.Error(), "PLANNING to ACTIVE")
	assert.Contains(t, decisionErr.Error(), "REGULATORY_SUBMISSION")
	assert.Contains(t, decisionErr.Error(), "IRB_REVIEW")
	assert.Contains(t, decisionErr.Error(), "WITHDRAWN")
	assert.Empty(t, result.Events)
}

func Test_Decide_RejectsSelfTransition(t *testing.T) {
	studyID := uuid.New()
	command := changestudystatus.BuildCommand(studyID, core.StudyStatusPlanning, "", "alice", fixedTime)

	result, err := changestudystatus.Decide(givenPlannedStudy(studyID), command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
	assert.True(t, core.IsValidationError(result.HasError()))
}

func Test_Decide_RequiresReasonForWithdrawal(t *testing.T) {
	studyID := uuid.New()

	tooShort := changestudystatus.BuildCommand(studyID, core.StudyStatusWithdrawn, "no", "alice", fixedTime)
	result, err := changestudystatus.Decide(givenPlannedStudy(studyID), tooShort)
	require.NoError(t, err)
	require.Error(t, result.HasError())
	assert.True(t, core.IsValidationError(result.HasError()))

	withReason := changestudystatus.BuildCommand(studyID, core.StudyStatusWithdrawn, "funding withdrawn", "alice", fixedTime)
	result, err = changestudystatus.Decide(givenPlannedStudy(studyID), withReason)
	require.NoError(t, err)
	assert.True(t, result.HasEventsToAppend())
}

func Test_Decide_RejectsUnknownTargetStatus(t *testing.T) {
	studyID := uuid.New()
	command := changestudystatus.BuildCommand(studyID, core.StudyStatus("FROZEN"), "", "alice", fixedTime)

	result, err := changestudystatus.Decide(givenPlannedStudy(studyID), command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
}

func Test_Decide_RejectsNonexistentStudy(t *testing.T) {
	command := changestudystatus.BuildCommand(uuid.New(), core.StudyStatusIRBReview, "", "alice", fixedTime)

	result, err := changestudystatus.Decide(core.DomainEvents{}, command)

	require.NoError(t, err)
	require.Error(t, result.HasError())
	assert.True(t, core.IsValidationError(result.HasError()))
}
