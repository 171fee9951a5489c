package initializestudydesign

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for initializing a study design.
//
// Business Rules:
//
//	GIVEN: A design stream for DesignID
//	WHEN: InitializeStudyDesign command is received
//	THEN: StudyDesignInitialized event is generated as the first event of the stream
//	ERROR: None beyond replay integrity
//	IDEMPOTENCY: If the design is already initialized, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayStudyDesign(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if state.Initialized {
		return core.IdempotentDecision(), nil
	}

	return core.SuccessDecision(core.BuildStudyDesignInitialized(
		command.DesignID,
		command.StudyID,
		command.StudyName,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
