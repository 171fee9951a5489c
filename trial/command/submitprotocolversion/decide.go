package submitprotocolversion

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for submitting a protocol version for approval.
//
// Business Rules:
//
//	GIVEN: An existing protocol version
//	WHEN: SubmitProtocolVersion command is received
//	THEN: ProtocolVersionStatusChanged event moving the version to SUBMITTED
//	ERROR: Version does not exist, or SUBMITTED is not reachable from the
//	       current status (only DRAFT and UNDER_REVIEW versions can be submitted)
//	IDEMPOTENCY: If the version is already SUBMITTED, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayProtocolVersion(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"protocolversion.exists", "protocol version does not exist")), nil
	}

	if state.Status == core.ProtocolVersionStatusSubmitted {
		return core.IdempotentDecision(), nil
	}

	if !state.Status.CanTransitionTo(core.ProtocolVersionStatusSubmitted) {
		return core.ErrorDecision(core.NewTransitionError(
			"protocolversion.status.transition",
			"cannot submit a protocol version in status "+state.Status.String(),
			state.Status.ValidNext())), nil
	}

	return core.SuccessDecision(core.BuildProtocolVersionStatusChanged(
		command.VersionID,
		state.Status,
		core.ProtocolVersionStatusSubmitted,
		"",
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
