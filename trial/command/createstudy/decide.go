package createstudy

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic to determine whether a study should be created.
// This is a pure function with no side effects - it replays the current history
// and returns the events that should be appended based on the business rules.
//
// Business Rules:
//
//	GIVEN: A study stream for StudyID
//	WHEN: CreateStudy command is received
//	THEN: StudyCreated event is generated and the study starts in PLANNING
//	ERROR: Name, sponsor, or protocol number empty
//	IDEMPOTENCY: If the study already exists, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayStudy(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if state.Exists {
		return core.IdempotentDecision(), nil
	}

	if command.Name == "" {
		return core.ErrorDecision(core.NewValidationError("study.name.required", "study name must not be empty")), nil
	}

	if command.Sponsor == "" {
		return core.ErrorDecision(core.NewValidationError("study.sponsor.required", "study sponsor must not be empty")), nil
	}

	if command.ProtocolNumber == "" {
		return core.ErrorDecision(core.NewValidationError("study.protocolnumber.required", "study protocol number must not be empty")), nil
	}

	return core.SuccessDecision(core.BuildStudyCreated(
		command.StudyID,
		command.Name,
		command.Sponsor,
		command.ProtocolNumber,
		command.Phase,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
