package initializestudydesign

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "InitializeStudyDesign"

// Command represents the intent to initialize the design companion of a study.
// It is usually issued by the design setup coordinator with a system issuer,
// but operators can issue it as well.
type Command struct {
	DesignID   uuid.UUID
	StudyID    uuid.UUID
	StudyName  string
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	designID uuid.UUID,
	studyID uuid.UUID,
	studyName string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		DesignID:   designID,
		StudyID:    studyID,
		StudyName:  studyName,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
