package approvedocument

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "ApproveDocument"

// Command represents the intent to approve a draft document, making it the
// current version.
type Command struct {
	DocumentID uuid.UUID
	Comment    string
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	documentID uuid.UUID,
	comment string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		DocumentID: documentID,
		Comment:    comment,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
