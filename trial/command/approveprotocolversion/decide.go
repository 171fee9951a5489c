package approveprotocolversion

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for approving a protocol version.
//
// Approval is deliberately not idempotent: approving an already APPROVED
// version is a business rejection, because a second approval of a regulatory
// document must never be silently swallowed.
//
// Business Rules:
//
//	GIVEN: An existing protocol version
//	WHEN: ApproveProtocolVersion command is received
//	THEN: ProtocolVersionStatusChanged event moving the version to APPROVED
//	ERROR: Version does not exist, or its status is not SUBMITTED
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayProtocolVersion(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"protocolversion.exists", "protocol version does not exist")), nil
	}

	if state.Status != core.ProtocolVersionStatusSubmitted {
		return core.ErrorDecision(core.NewTransitionError(
			"protocolversion.approve.status",
			"cannot approve a protocol version in status "+state.Status.String(),
			state.Status.ValidNext())), nil
	}

	return core.SuccessDecision(core.BuildProtocolVersionStatusChanged(
		command.VersionID,
		state.Status,
		core.ProtocolVersionStatusApproved,
		"",
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
