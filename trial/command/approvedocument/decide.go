package approvedocument

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for approving a draft document.
//
// Business Rules:
//
//	GIVEN: An existing document
//	WHEN: ApproveDocument command is received
//	THEN: DocumentStatusChanged event moving the document to CURRENT
//	ERROR: Document does not exist, or its status is not DRAFT
//	IDEMPOTENCY: If the document is already CURRENT, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayDocument(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"document.exists", "document does not exist")), nil
	}

	if state.Status == core.DocumentStatusCurrent {
		return core.IdempotentDecision(), nil
	}

	if !state.Status.CanTransitionTo(core.DocumentStatusCurrent) {
		return core.ErrorDecision(core.NewTransitionError(
			"document.approve.status",
			"cannot approve a document in status "+state.Status.String(),
			state.Status.ValidNext())), nil
	}

	return core.SuccessDecision(core.BuildDocumentStatusChanged(
		command.DocumentID,
		state.Status,
		core.DocumentStatusCurrent,
		"",
		command.Comment,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
