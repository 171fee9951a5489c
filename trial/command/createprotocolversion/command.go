package createprotocolversion

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "CreateProtocolVersion"

// Command represents the intent to create a new protocol version for a study.
type Command struct {
	VersionID     uuid.UUID
	StudyID       uuid.UUID
	VersionNumber string
	Description   string
	IssuedBy      core.UserIDString
	OccurredAt    core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	versionID uuid.UUID,
	studyID uuid.UUID,
	versionNumber string,
	description string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		VersionID:     versionID,
		StudyID:       studyID,
		VersionNumber: versionNumber,
		Description:   description,
		IssuedBy:      issuedBy,
		OccurredAt:    core.ToOccurredAt(occurredAt),
	}
}
