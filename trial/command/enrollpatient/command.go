package enrollpatient

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "EnrollPatient"

// Command represents the intent to enroll a registered patient into a study at a site.
type Command struct {
	PatientID        uuid.UUID
	StudyID          uuid.UUID
	SiteID           uuid.UUID
	EnrollmentNumber string
	IssuedBy         core.UserIDString
	OccurredAt       core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	patientID uuid.UUID,
	studyID uuid.UUID,
	siteID uuid.UUID,
	enrollmentNumber string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		PatientID:        patientID,
		StudyID:          studyID,
		SiteID:           siteID,
		EnrollmentNumber: enrollmentNumber,
		IssuedBy:         issuedBy,
		OccurredAt:       core.ToOccurredAt(occurredAt),
	}
}
