package supersededocument

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "SupersedeDocument"

// Command represents the intent to supersede a current document with a
// replacing one.
type Command struct {
	DocumentID             uuid.UUID
	SupersededByDocumentID uuid.UUID
	Comment                string
	IssuedBy               core.UserIDString
	OccurredAt             core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	documentID uuid.UUID,
	supersededByDocumentID uuid.UUID,
	comment string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		DocumentID:             documentID,
		SupersededByDocumentID: supersededByDocumentID,
		Comment:                comment,
		IssuedBy:               issuedBy,
		OccurredAt:             core.ToOccurredAt(occurredAt),
	}
}
