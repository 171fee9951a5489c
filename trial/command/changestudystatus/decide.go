package changestudystatus

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for study status transitions.
//
// Business Rules:
//
//	GIVEN: An existing study
//	WHEN: ChangeStudyStatus command is received
//	THEN: StudyStatusChanged event recording old and new status
//	ERROR: Study does not exist, target status unknown, transition illegal
//	       (including requesting the current status again), or a required
//	       reason is missing (suspension, termination, withdrawal)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayStudy(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"study.exists", "study does not exist")), nil
	}

	if !command.NewStatus.IsValid() {
		return core.ErrorDecision(core.NewValidationError(
			"study.status.known", "unknown study status "+command.NewStatus.String())), nil
	}

	if !state.Status.CanTransitionTo(command.NewStatus) {
		return core.ErrorDecision(core.NewTransitionError(
			"study.status.transition",
			"cannot change study status from "+state.Status.String()+" to "+command.NewStatus.String(),
			state.Status.ValidNext())), nil
	}

	if command.NewStatus.RequiresReason() && len(command.Reason) < core.MinReasonLength {
		return core.ErrorDecision(core.NewValidationError(
			"study.status.reason",
			"a reason of at least 3 characters is required for status "+command.NewStatus.String())), nil
	}

	return core.SuccessDecision(core.BuildStudyStatusChanged(
		command.StudyID,
		state.Status,
		command.NewStatus,
		command.Reason,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
