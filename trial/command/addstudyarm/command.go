package addstudyarm

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "AddStudyArm"

// Command represents the intent to add an arm to an initialized study design.
type Command struct {
	DesignID         uuid.UUID
	ArmID            uuid.UUID
	Name             string
	ArmType          string
	TargetEnrollment int
	IssuedBy         core.UserIDString
	OccurredAt       core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	designID uuid.UUID,
	armID uuid.UUID,
	name string,
	armType string,
	targetEnrollment int,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		DesignID:         designID,
		ArmID:            armID,
		Name:             name,
		ArmType:          armType,
		TargetEnrollment: targetEnrollment,
		IssuedBy:         issuedBy,
		OccurredAt:       core.ToOccurredAt(occurredAt),
	}
}
