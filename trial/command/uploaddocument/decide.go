package uploaddocument

import (
	"github.com/clinforge/trialcore/trial/core"
)

// Decide implements the business logic to determine whether a document should be uploaded.
//
// Business Rules:
//
//	GIVEN: A document stream for DocumentID
//	WHEN: UploadDocument command is received
//	THEN: DocumentUploaded event is generated and the document starts as DRAFT
//	ERROR: Document name, document type, or file name empty
//	IDEMPOTENCY: If the document already exists, no event is generated (no-op)
func Decide(history core.DomainEvents, command Command) (core.DecisionResult, error) {
	state, err := core.ReplayDocument(history)
	if err != nil {
		return core.DecisionResult{}, err
	}

	if state.Exists {
		return core.IdempotentDecision(), nil
	}

	if command.DocumentName == "" {
		return core.ErrorDecision(core.NewValidationError(
			"document.name.required", "document name must not be empty")), nil
	}

	if command.DocumentType == "" {
		return core.ErrorDecision(core.NewValidationError(
			"document.type.required", "document type must not be empty")), nil
	}

	if command.FileName == "" {
		return core.ErrorDecision(core.NewValidationError(
			"document.filename.required", "document file name must not be empty")), nil
	}

	return core.SuccessDecision(core.BuildDocumentUploaded(
		command.DocumentID,
		command.StudyID,
		command.DocumentName,
		command.DocumentType,
		command.FileName,
		command.IssuedBy,
		command.OccurredAt,
	)), nil
}
