package updatestudydetails

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "UpdateStudyDetails"

// Command represents the intent to partially update a study's details.
// Nil fields are left unchanged.
type Command struct {
	StudyID    uuid.UUID
	Name       *string
	Sponsor    *string
	Phase      *string
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	studyID uuid.UUID,
	name *string,
	sponsor *string,
	phase *string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		StudyID:    studyID,
		Name:       name,
		Sponsor:    sponsor,
		Phase:      phase,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
