package changepatientstatus

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "ChangePatientStatus"

// Command represents the intent to move a patient to a new lifecycle status.
type Command struct {
	PatientID  uuid.UUID
	NewStatus  core.PatientStatus
	Reason     string
	IssuedBy   core.UserIDString
	OccurredAt core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	patientID uuid.UUID,
	newStatus core.PatientStatus,
	reason string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		PatientID:  patientID,
		NewStatus:  newStatus,
		Reason:     reason,
		IssuedBy:   issuedBy,
		OccurredAt: core.ToOccurredAt(occurredAt),
	}
}
