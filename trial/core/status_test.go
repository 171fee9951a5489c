package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinforge/trialcore/trial/core"
)

func Test_StudyStatus_TransitionGraph(t *testing.T) {
	assert.True(t, core.StudyStatusPlanning.CanTransitionTo(core.StudyStatusRegulatorySubmission))
	assert.True(t, core.StudyStatusPlanning.CanTransitionTo(core.StudyStatusIRBReview))
	assert.True(t, core.StudyStatusRegulatorySubmission.CanTransitionTo(core.StudyStatusApproved))
	assert.True(t, core.StudyStatusIRBReview.CanTransitionTo(core.StudyStatusRegulatorySubmission))
	assert.True(t, core.StudyStatusApproved.CanTransitionTo(core.StudyStatusActive))
	assert.True(t, core.StudyStatusActive.CanTransitionTo(core.StudyStatusSuspended))
	assert.True(t, core.StudyStatusSuspended.CanTransitionTo(core.StudyStatusActive))

	// skipping intermediate stages is not allowed
	assert.False(t, core.StudyStatusPlanning.CanTransitionTo(core.StudyStatusActive))
	assert.False(t, core.StudyStatusPlanning.CanTransitionTo(core.StudyStatusApproved))
	assert.False(t, core.StudyStatusActive.CanTransitionTo(core.StudyStatusWithdrawn))
}

func Test_StudyStatus_SelfTransitionsAreInvalid(t *testing.T) {
	statuses := []core.StudyStatus{
		core.StudyStatusPlanning, core.StudyStatusRegulatorySubmission, core.StudyStatusIRBReview,
		core.StudyStatusApproved, core.StudyStatusActive, core.StudyStatusSuspended,
		core.StudyStatusCompleted, core.StudyStatusTerminated, core.StudyStatusWithdrawn,
	}

	for _, status := range statuses {
		assert.Falsef(t, status.CanTransitionTo(status), "self transition must be invalid for %s", status)
	}
}

func Test_StudyStatus_TerminalStatusesHaveNoOutgoingEdges(t *testing.T) {
	for _, status := range []core.StudyStatus{core.StudyStatusCompleted, core.StudyStatusTerminated, core.StudyStatusWithdrawn} {
		assert.Truef(t, status.IsTerminal(), "%s must be terminal", status)
		assert.Emptyf(t, status.ValidNext(), "%s must have no valid next statuses", status)
	}

	assert.False(t, core.StudyStatusActive.IsTerminal())
}

func Test_StudyStatus_ReasonRequirements(t *testing.T) {
	assert.True(t, core.StudyStatusSuspended.RequiresReason())
	assert.True(t, core.StudyStatusTerminated.RequiresReason())
	assert.True(t, core.StudyStatusWithdrawn.RequiresReason())
	assert.False(t, core.StudyStatusActive.RequiresReason())
	assert.False(t, core.StudyStatusApproved.RequiresReason())
}

func Test_StudyStatus_UnknownStatusIsInvalidEverywhere(t *testing.T) {
	unknown := core.StudyStatus("FROZEN")

	assert.False(t, unknown.IsValid())
	assert.False(t, unknown.IsTerminal())
	assert.False(t, unknown.CanTransitionTo(core.StudyStatusActive))
	assert.False(t, core.StudyStatusActive.CanTransitionTo(unknown))
}

func Test_PatientStatus_TransitionGraph(t *testing.T) {
	assert.True(t, core.PatientStatusRegistered.CanTransitionTo(core.PatientStatusScreening))
	assert.True(t, core.PatientStatusScreening.CanTransitionTo(core.PatientStatusEnrolled))
	assert.True(t, core.PatientStatusEnrolled.CanTransitionTo(core.PatientStatusActive))
	assert.True(t, core.PatientStatusActive.CanTransitionTo(core.PatientStatusCompleted))

	assert.False(t, core.PatientStatusRegistered.CanTransitionTo(core.PatientStatusEnrolled))
	assert.False(t, core.PatientStatusCompleted.CanTransitionTo(core.PatientStatusActive))
}

func Test_PatientStatus_WithdrawalReachableFromEveryNonTerminalStatus(t *testing.T) {
	for _, status := range []core.PatientStatus{
		core.PatientStatusRegistered, core.PatientStatusScreening,
		core.PatientStatusEnrolled, core.PatientStatusActive,
	} {
		assert.Truef(t, status.CanTransitionTo(core.PatientStatusWithdrawn), "withdrawal must be reachable from %s", status)
	}

	assert.False(t, core.PatientStatusCompleted.CanTransitionTo(core.PatientStatusWithdrawn))
	assert.True(t, core.PatientStatusWithdrawn.RequiresReason())
}

func Test_SiteStatus_TransitionGraph(t *testing.T) {
	assert.True(t, core.SiteStatusPending.CanTransitionTo(core.SiteStatusActive))
	assert.True(t, core.SiteStatusActive.CanTransitionTo(core.SiteStatusSuspended))
	assert.True(t, core.SiteStatusSuspended.CanTransitionTo(core.SiteStatusActive))
	assert.True(t, core.SiteStatusInactive.IsTerminal())

	assert.False(t, core.SiteStatusPending.CanTransitionTo(core.SiteStatusSuspended))
	assert.False(t, core.SiteStatusInactive.CanTransitionTo(core.SiteStatusActive))
}

func Test_SiteStatus_AssignmentEligibility(t *testing.T) {
	assert.True(t, core.SiteStatusPending.AcceptsUserAssignments())
	assert.True(t, core.SiteStatusActive.AcceptsUserAssignments())
	assert.False(t, core.SiteStatusInactive.AcceptsUserAssignments())
	assert.False(t, core.SiteStatusSuspended.AcceptsUserAssignments())
}

func Test_ProtocolVersionStatus_TransitionGraph(t *testing.T) {
	assert.True(t, core.ProtocolVersionStatusDraft.CanTransitionTo(core.ProtocolVersionStatusSubmitted))
	assert.True(t, core.ProtocolVersionStatusSubmitted.CanTransitionTo(core.ProtocolVersionStatusApproved))
	assert.True(t, core.ProtocolVersionStatusApproved.CanTransitionTo(core.ProtocolVersionStatusActive))
	assert.True(t, core.ProtocolVersionStatusActive.CanTransitionTo(core.ProtocolVersionStatusSuperseded))

	// an active protocol version cannot be withdrawn, only superseded
	assert.False(t, core.ProtocolVersionStatusActive.CanTransitionTo(core.ProtocolVersionStatusWithdrawn))
	assert.False(t, core.ProtocolVersionStatusDraft.CanTransitionTo(core.ProtocolVersionStatusApproved))
	assert.False(t, core.ProtocolVersionStatusDraft.CanTransitionTo(core.ProtocolVersionStatusActive))
}

func Test_DocumentStatus_TransitionGraph(t *testing.T) {
	assert.True(t, core.DocumentStatusDraft.CanTransitionTo(core.DocumentStatusCurrent))
	assert.True(t, core.DocumentStatusDraft.CanTransitionTo(core.DocumentStatusArchived))
	assert.True(t, core.DocumentStatusCurrent.CanTransitionTo(core.DocumentStatusSuperseded))

	assert.False(t, core.DocumentStatusSuperseded.CanTransitionTo(core.DocumentStatusCurrent))
	assert.True(t, core.DocumentStatusDraft.IsEditable())
	assert.False(t, core.DocumentStatusCurrent.IsEditable())
}
