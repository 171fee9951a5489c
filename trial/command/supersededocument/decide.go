package supersededocument

import (
	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic for superseding a current document.
//
// Business Rules:
//
//	GIVEN: An existing document
//	WHEN: SupersedeDocument command is received
//	THEN: DocumentStatusChanged event moving the document to SUPERSEDED,
//	      recording the replacing document's id
//	ERROR: Document does not exist, the replacing document id is missing,
//	       or the document's status is not CURRENT
//	IDEMPOTENCY: If the document is already SUPERSEDED, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayDocument(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if !state.Exists {
		return core.ErrorDecision(core.NewValidationError(
			"document.exists", "document does not exist")), nil
	}

	if state.Status == core.DocumentStatusSuperseded {
		return core.IdempotentDecision(), nil
	}

	if command.SupersededByDocumentID == uuid.Nil {
		return core.ErrorDecision(core.NewValidationError(
			"document.supersededby.required", "superseding requires the replacing document id")), nil
	}

	if !state.Status.CanTransitionTo(core.DocumentStatusSuperseded) {
		return core.ErrorDecision(core.NewTransitionError(
			"document.supersede.status",
			"cannot supersede a document in status "+state.Status.String(),
			state.Status.ValidNext())), nil
	}

	return core.SuccessDecision(core.BuildDocumentStatusChanged(
		command.DocumentID,
		state.Status,
		core.DocumentStatusSuperseded,
		command.SupersededByDocumentID.String(),
		command.Comment,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
