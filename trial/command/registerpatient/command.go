package registerpatient

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinforge/trialcore/trial/core"
)

// CommandType identifies this use case for dispatch, logging, and metrics.
const CommandType = "RegisterPatient"

// Command represents the intent to register a new patient.
type Command struct {
	PatientID       uuid.UUID
	ScreeningNumber string
	DateOfBirth     time.Time
	PhoneNumber     string
	Email           string
	IssuedBy        core.UserIDString
	OccurredAt      core.OccurredAtTS
}

// BuildCommand creates a new Command with the provided parameters.
func BuildCommand(
	patientID uuid.UUID,
	screeningNumber string,
	dateOfBirth time.Time,
	phoneNumber string,
	email string,
	issuedBy core.UserIDString,
	occurredAt time.Time,
) Command {

	return Command{
		PatientID:       patientID,
		ScreeningNumber: screeningNumber,
		DateOfBirth:     dateOfBirth,
		PhoneNumber:     phoneNumber,
		Email:           email,
		IssuedBy:        issuedBy,
		OccurredAt:      core.ToOccurredAt(occurredAt),
	}
}
