package changestudystatus

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "ChangeStudyStatus"

// Command represents the intent to move a study to a new lifecycle status.
type Command struct {
	StudyID    uuid.UUID
	NewStatus  core.StudyStatus
	Reason     string
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	studyID uuid.UUID,
	newStatus core.StudyStatus,
	reason string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		StudyID:    studyID,
		NewStatus:  newStatus,
		Reason:     reason,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
