package createprotocolversion

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic to determine whether a protocol version should be created.
//
// Business Rules:
//
//	GIVEN: A protocol version stream for VersionID
//	WHEN: CreateProtocolVersion command is received
//	THEN: ProtocolVersionCreated event is generated and the version starts as DRAFT
//	ERROR: Version number empty
//	IDEMPOTENCY: If the version already exists, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayProtocolVersion(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if state.Exists {
		return core.IdempotentDecision(), nil
	}

	if command.VersionNumber == "" {
		return core.ErrorDecision(core.NewValidationError(
			"protocolversion.versionnumber.required", "protocol version number must not be empty")), nil
	}

	return core.SuccessDecision(core.BuildProtocolVersionCreated(
		command.VersionID,
		command.StudyID,
		command.VersionNumber,
		command.Description,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
