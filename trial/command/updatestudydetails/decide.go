package updatestudydetails

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for partial study detail updates.
//
// Business Rules:
//
//	GIVEN: An existing study
//	WHEN: UpdateStudyDetails command is received
//	THEN: StudyDetailsUpdated event carrying only the changed fields
//	ERROR: Study does not exist, or is locked (completed, terminated, withdrawn)
//	IDEMPOTENCY: If no field would change, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayStudy(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"study.exists", "study does not exist")), nil
	}

	if state.Status.LocksStudy() {
		return core.ErrorDecision(core.NewValidationError(
			"study.locked", "study in status "+state.Status.String()+" cannot be updated")), nil
	}

	name := changedValue(command.Name, state.Name)
	sponsor := changedValue(command.Sponsor, state.Sponsor)
	phase := changedValue(command.Phase, state.Phase)

	if name == nil && sponsor == nil && phase == nil {
		return core.IdempotentDecision(), nil
	}

	if name != nil && *name == "" {
		return core.ErrorDecision(core.NewValidationError(
			"study.name.required", "study name must not be empty")), nil
	}

	return core.SuccessDecision(core.BuildStudyDetailsUpdated(
		command.StudyID,
		name,
		sponsor,
		phase,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}

// changedValue drops a requested field when it matches the current value.
func changedValue(requested *string, current string) *string {
	if requested == nil || *requested == current {
		return nil
	}

	return requested
}
