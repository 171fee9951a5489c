package changepatientstatus

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for patient status transitions.
//
// Business Rules:
//
//	GIVEN: An existing patient
//	WHEN: ChangePatientStatus command is received
//	THEN: PatientStatusChanged event recording old and new status
//	ERROR: Patient does not exist, target status unknown, transition illegal
//	       (including requesting the current status again), or withdrawal
//	       without a reason
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayPatient(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"patient.exists", "patient does not exist")), nil
	}

	if !command.NewStatus.IsValid() {
		return core.ErrorDecision(core.NewValidationError(
			"patient.status.known", "unknown patient status "+command.NewStatus.String())), nil
	}

	if !state.Status.CanTransitionTo(command.NewStatus) {
		return core.ErrorDecision(core.NewTransitionError(
			"patient.status.transition",
			"cannot change patient status from "+state.Status.String()+" to "+command.NewStatus.String(),
			state.Status.ValidNext())), nil
	}

	if command.NewStatus.RequiresReason() && len(command.Reason) < core.MinReasonLength {
		return core.ErrorDecision(core.NewValidationError(
			"patient.status.reason",
			"a reason of at least 3 characters is required for status "+command.NewStatus.String())), nil
	}

	return core.SuccessDecision(core.BuildPatientStatusChanged(
		command.PatientID,
		state.Status,
		command.NewStatus,
		command.Reason,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
