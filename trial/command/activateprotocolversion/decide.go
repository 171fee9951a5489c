package activateprotocolversion

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for activating a protocol version.
//
// Business Rules:
//
//	GIVEN: An existing protocol version
//	WHEN: ActivateProtocolVersion command is received
//	THEN: ProtocolVersionStatusChanged event moving the version to ACTIVE
//	ERROR: Version does not exist, or its status is not APPROVED
//	IDEMPOTENCY: If the version is already ACTIVE, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayProtocolVersion(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"protocolversion.exists", "protocol version does not exist")), nil
	}

	if state.Status == core.ProtocolVersionStatusActive {
		return core.IdempotentDecision(), nil
	}

	if state.Status != core.ProtocolVersionStatusApproved {
		return core.ErrorDecision(core.NewTransitionError(
			"protocolversion.activate.status",
			"cannot activate a protocol version in status "+state.Status.String(),
			state.Status.ValidNext())), nil
	}

	return core.SuccessDecision(core.BuildProtocolVersionStatusChanged(
		command.VersionID,
		state.Status,
		core.ProtocolVersionStatusActive,
		"",
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}

// DecideSupersession marks the previously active version SUPERSEDED after its
// successor was activated. Already superseded versions are a no-op so retried
// activations stay idempotent.
func DecideSupersession(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayProtocolVersion(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"protocolversion.exists", "previously active protocol version does not exist")), nil
	}

	if state.Status == core.ProtocolVersionStatusSuperseded {
		return core.IdempotentDecision(), nil
	}

	if !state.Status.CanTransitionTo(core.ProtocolVersionStatusSuperseded) {
		return core.ErrorDecision(core.NewTransitionError(
			"protocolversion.supersede.status",
			"cannot supersede a protocol version in status "+state.Status.String(),
			state.Status.ValidNext())), nil
	}

	return core.SuccessDecision(core.BuildProtocolVersionStatusChanged(
		command.PreviousActiveVersionID,
		state.Status,
		core.ProtocolVersionStatusSuperseded,
		"superseded by version "+command.VersionID.String(),
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
