package uploaddocument

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "UploadDocument"

// Command represents the intent to upload a new study document.
type Command struct {
	DocumentID   uuid.UUID
	StudyID      uuid.UUID
	DocumentName string
	DocumentType string
	FileName     string
	IssuedBy     core.UserIDString
	OccurredAt   core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	documentID uuid.UUID,
	studyID uuid.UUID,
	documentName string,
	documentType string,
	fileName string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		DocumentID:   documentID,
		StudyID:      studyID,
		DocumentName: documentName,
		DocumentType: documentType,
		FileName:     fileName,
		IssuedBy:     issuedBy,
		OccurredAt:   core.ToOccurredAt(occurredAt),
	}
}
