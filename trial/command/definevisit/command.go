package definevisit

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "DefineVisit"

// Command represents the intent to add a scheduled visit to an initialized
// study design. ArmID is optional: uuid.Nil defines the visit for the whole
// design, any other value scopes it to that arm.
type Command struct {
	DesignID     uuid.UUID
	VisitID      uuid.UUID
	ArmID        uuid.UUID
	Name         string
	Timepoint    int
	WindowBefore int
	WindowAfter  int
	VisitType    string
	IssuedBy     core.UserIDString
	OccurredAt   core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	designID uuid.UUID,
	visitID uuid.UUID,
	armID uuid.UUID,
	name string,
	timepoint int,
	windowBefore int,
	windowAfter int,
	visitType string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		DesignID:     designID,
		VisitID:      visitID,
		ArmID:        armID,
		Name:         name,
		Timepoint:    timepoint,
		WindowBefore: windowBefore,
		WindowAfter:  windowAfter,
		VisitType:    visitType,
		IssuedBy:     issuedBy,
		OccurredAt:   core.ToOccurredAt(occurredAt),
	}
}
